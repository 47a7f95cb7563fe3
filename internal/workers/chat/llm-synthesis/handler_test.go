package llmsynthesis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t *testing.T
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{t: t}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, fields)
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return l
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig(baseURL string) *Config {
	return &Config{
		GenAIBaseURL: baseURL,
		Model:        "test-model",
		Timeout:      5 * time.Second,
		MaxRetries:   2,
		MaxTokens:    512,
		Temperature:  0.4,
	}
}

func newTestHandler(t *testing.T, baseURL string) *Handler {
	handler, err := NewHandler(createTestConfig(baseURL), NewTestLogger(t))
	require.NoError(t, err)
	return handler
}

func generationResponse(text string, confidence float64, sources []string) string {
	response := map[string]interface{}{
		"text":       text,
		"confidence": confidence,
		"sources":    sources,
	}
	data, _ := json.Marshal(response)
	return string(data)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	var capturedRequest map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/ai/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedRequest))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(generationResponse(
			"The boAt Airdopes 141 costs ₹1,299.",
			0.88,
			[]string{"catalog"},
		)))
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL)

	input := &Input{
		Query:        "What is the price of boAt Airdopes?",
		Intent:       Intent{Name: "product_price", Confidence: 0.7},
		Products:     []map[string]interface{}{{"name": "boAt Airdopes 141", "price": 1299.0}},
		RequiresData: true,
	}

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "The boAt Airdopes 141 costs ₹1,299.", output.Reply)
	assert.Equal(t, 0.88, output.Confidence)
	assert.Equal(t, []string{"catalog"}, output.Sources)

	// The prompt must carry the catalog data
	prompt := capturedRequest["prompt"].(string)
	assert.Contains(t, prompt, "boAt Airdopes 141")
	assert.Contains(t, prompt, "product_price")
}

func TestHandler_Execute_EmptyTextGetsFallbackReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(generationResponse("   ", 0.9, nil)))
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL)

	output, err := handler.Execute(context.Background(), &Input{Query: "hi"})
	require.NoError(t, err)

	assert.Contains(t, output.Reply, "rephrase")
	assert.Equal(t, 0.1, output.Confidence)
}

func TestHandler_Execute_ClampsOutOfRangeConfidence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(generationResponse("Sure, here you go.", 3.7, nil)))
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL)

	output, err := handler.Execute(context.Background(), &Input{Query: "hi"})
	require.NoError(t, err)
	assert.Equal(t, 0.5, output.Confidence)
}

// ==========================
// Response Schema Tests
// ==========================

func TestHandler_Execute_AcceptsNullSources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text": "No citations for this one.", "confidence": 0.8, "sources": null}`))
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL)

	output, err := handler.Execute(context.Background(), &Input{Query: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "No citations for this one.", output.Reply)
	assert.Empty(t, output.Sources)
}

func TestHandler_Execute_RejectsMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing text field", `{"confidence": 0.9}`},
		{"text wrong type", `{"text": 42}`},
		{"sources wrong type", `{"text": "ok", "sources": "catalog"}`},
		{"not json", `<html>upstream error</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			handler := newTestHandler(t, server.URL)

			_, err := handler.Execute(context.Background(), &Input{Query: "hi"})
			assert.ErrorIs(t, err, ErrLLMBadResponse)
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_RetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(generationResponse("Recovered.", 0.8, nil)))
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL)

	output, err := handler.Execute(context.Background(), &Input{Query: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Recovered.", output.Reply)
	assert.Equal(t, 3, attempts)
}

func TestHandler_Execute_FailsAfterMaxRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	handler := newTestHandler(t, server.URL)

	_, err := handler.Execute(context.Background(), &Input{Query: "hi"})
	assert.ErrorIs(t, err, ErrLLMSynthesisFailed)
}

func TestHandler_Execute_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(generationResponse("too late", 0.9, nil)))
	}))
	defer server.Close()

	config := createTestConfig(server.URL)
	config.Timeout = 50 * time.Millisecond
	handler, err := NewHandler(config, NewTestLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	_, err = handler.Execute(ctx, &Input{Query: "hi"})
	assert.ErrorIs(t, err, ErrLLMTimeout)
}

// ==========================
// Prompt Construction Tests
// ==========================

func TestHandler_BuildPrompt(t *testing.T) {
	handler := newTestHandler(t, "http://localhost:0")

	t.Run("no products with data required", func(t *testing.T) {
		prompt := handler.buildPrompt(&Input{
			Query:        "show me laptops under 10k",
			Intent:       Intent{Name: "product_search"},
			RequiresData: true,
		})
		assert.Contains(t, prompt, "No matching products were found")
	})

	t.Run("history is included in order", func(t *testing.T) {
		prompt := handler.buildPrompt(&Input{
			Query:  "and the second one?",
			Intent: Intent{Name: "product_info"},
			ChatHistory: []HistoryMessage{
				{Role: "user", Content: "show me headphones"},
				{Role: "assistant", Content: "Here are three options."},
			},
		})
		first := strings.Index(prompt, "show me headphones")
		second := strings.Index(prompt, "Here are three options.")
		assert.Greater(t, second, first)
		assert.Greater(t, first, -1)
	})
}
