package texttospeech

import (
	"context"
	"encoding/base64"
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
		TTSBaseURL: baseURL,
		Voice:      "en-IN-standard",
		Format:     "mp3",
		Timeout:    5 * time.Second,
		MaxRetries: 2,
		MaxChars:   100,
	}
}

func ttsResponse(audio []byte, format string, durationMs int64) string {
	response := map[string]interface{}{
		"audio":      base64.StdEncoding.EncodeToString(audio),
		"format":     format,
		"durationMs": durationMs,
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
		require.Equal(t, "/api/tts/synthesize", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedRequest))
		w.Write([]byte(ttsResponse([]byte("fake-mp3-bytes"), "mp3", 1200)))
	}))
	defer server.Close()

	handler := NewHandler(createTestConfig(server.URL), NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Text: "Here are three laptops."})
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(output.AudioBase64)
	require.NoError(t, err)
	assert.Equal(t, "fake-mp3-bytes", string(decoded))
	assert.Equal(t, "mp3", output.Format)
	assert.Equal(t, int64(1200), output.DurationMs)

	// Defaults from config are applied
	assert.Equal(t, "en-IN-standard", capturedRequest["voice"])
	assert.Equal(t, "mp3", capturedRequest["format"])
}

func TestHandler_Execute_InputOverridesDefaults(t *testing.T) {
	var capturedRequest map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&capturedRequest)
		w.Write([]byte(ttsResponse([]byte("x"), "", 0)))
	}))
	defer server.Close()

	handler := NewHandler(createTestConfig(server.URL), NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Text:   "Namaste!",
		Voice:  "hi-IN-standard",
		Format: "ogg",
	})
	require.NoError(t, err)

	assert.Equal(t, "hi-IN-standard", capturedRequest["voice"])
	assert.Equal(t, "ogg", capturedRequest["format"])
	// Missing format in the response falls back to the requested one
	assert.Equal(t, "ogg", output.Format)
}

// ==========================
// Validation Tests
// ==========================

func TestHandler_Execute_TextValidation(t *testing.T) {
	handler := NewHandler(createTestConfig("http://localhost:0"), NewTestLogger(t))

	tests := []struct {
		name string
		text string
	}{
		{"empty text", ""},
		{"whitespace only", "   \n\t "},
		{"over char limit", strings.Repeat("a", 101)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Execute(context.Background(), &Input{Text: tt.text})
			assert.ErrorIs(t, err, ErrTextInvalid)
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_CorruptedAudio(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty audio", `{"audio": "", "format": "mp3"}`},
		{"invalid base64", `{"audio": "not-valid-base64!!!", "format": "mp3"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			handler := NewHandler(createTestConfig(server.URL), NewTestLogger(t))

			_, err := handler.Execute(context.Background(), &Input{Text: "hello"})
			assert.ErrorIs(t, err, ErrAudioCorrupted)
		})
	}
}

func TestHandler_Execute_RetryLogic(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(ttsResponse([]byte("ok"), "mp3", 100)))
	}))
	defer server.Close()

	handler := NewHandler(createTestConfig(server.URL), NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Text: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, output.AudioBase64)
	assert.GreaterOrEqual(t, attempts, 2)
}

func TestHandler_Execute_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(ttsResponse([]byte("late"), "mp3", 0)))
	}))
	defer server.Close()

	config := createTestConfig(server.URL)
	config.Timeout = 50 * time.Millisecond
	handler := NewHandler(config, NewTestLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	_, err := handler.Execute(ctx, &Input{Text: "hello"})
	assert.ErrorIs(t, err, ErrTTSTimeout)
}
