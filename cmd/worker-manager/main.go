// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"shopchat-workers/internal/common/aws"
	"shopchat-workers/internal/common/camunda"
	"shopchat-workers/internal/common/config"
	"shopchat-workers/internal/common/database"
	"shopchat-workers/internal/common/logger"
	"shopchat-workers/internal/common/observability"
	"shopchat-workers/pkg/registry"

	// Chat Workers (5)
	ci "shopchat-workers/internal/workers/chat/classify-intent"
	llm "shopchat-workers/internal/workers/chat/llm-synthesis"
	qp "shopchat-workers/internal/workers/chat/query-products"
	scm "shopchat-workers/internal/workers/chat/save-chat-message"
	tts "shopchat-workers/internal/workers/chat/text-to-speech"

	// Communication Workers (1)
	es "shopchat-workers/internal/workers/communication/email-send"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Load Activity Registry ---
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Warn("activity registry unavailable, task type checks disabled",
			zap.String("path", cfg.Registry.Path), zap.Error(err))
		reg = nil
	} else {
		zapLog.Info("activity registry loaded",
			zap.String("version", reg.Version),
			zap.Int("activities", len(reg.Activities)),
		)
	}

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer camundaClient.Close()
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	var workers []*camunda.CamundaWorker
	startWorker := func(taskType string, handler camunda.JobHandler) {
		wcfg := cfg.Workers[taskType]
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		if reg != nil {
			if _, ok := reg.FindByTaskType(taskType); !ok {
				zapLog.Warn("task type not present in activity registry",
					zap.String("taskType", taskType))
			}
		}

		w := camunda.NewWorker(
			zeebeClient,
			taskType,
			wcfg.MaxJobsActive,
			time.Duration(wcfg.Timeout)*time.Millisecond,
			handler,
			zapLog,
		)
		w.Start()
		workers = append(workers, w)
	}

	// --- Register Chat Pipeline Workers ---

	// Classify Intent
	{
		handler := ci.NewHandler(
			&ci.Config{
				Timeout: time.Duration(cfg.Workers[ci.TaskType].Timeout) * time.Millisecond,
			},
			&classifyIntentLoggerAdapter{log},
		)
		startWorker(ci.TaskType, handler)
	}

	// Query Products
	{
		handler := qp.NewHandler(
			&qp.Config{
				IndexName: cfg.Database.Elasticsearch.ProductIndex,
				Timeout:   time.Duration(cfg.Workers[qp.TaskType].Timeout) * time.Millisecond,
			},
			esClient.Client, log,
		)
		startWorker(qp.TaskType, handler)
	}

	// Save Chat Message
	{
		handler := scm.NewHandler(scm.LoadConfig(), pg.DB, redis.Client, log)
		startWorker(scm.TaskType, handler)
	}

	// LLM Synthesis
	{
		handler, err := llm.NewHandler(
			&llm.Config{
				GenAIBaseURL: cfg.APIs.GenAI.BaseURL,
				APIKey:       cfg.APIs.GenAI.APIKey,
				Model:        cfg.APIs.GenAI.Model,
				Timeout:      time.Duration(cfg.APIs.GenAI.Timeout) * time.Millisecond,
				MaxRetries:   cfg.Workers[llm.TaskType].MaxRetries,
				MaxTokens:    cfg.APIs.GenAI.MaxTokens,
				Temperature:  cfg.APIs.GenAI.Temperature,
			},
			&llmSynthesisLoggerAdapter{log},
		)
		if err != nil {
			zapLog.Fatal("failed to create llm-synthesis handler", zap.Error(err))
		}
		startWorker(llm.TaskType, handler)
	}

	// Text To Speech
	{
		ttsCfg := tts.LoadConfig()
		ttsCfg.TTSBaseURL = cfg.APIs.TTS.BaseURL
		ttsCfg.APIKey = cfg.APIs.TTS.APIKey
		ttsCfg.MaxRetries = cfg.Workers[tts.TaskType].MaxRetries
		if cfg.APIs.TTS.Voice != "" {
			ttsCfg.Voice = cfg.APIs.TTS.Voice
		}
		if cfg.APIs.TTS.Format != "" {
			ttsCfg.Format = cfg.APIs.TTS.Format
		}
		if cfg.APIs.TTS.Timeout > 0 {
			ttsCfg.Timeout = time.Duration(cfg.APIs.TTS.Timeout) * time.Millisecond
		}
		handler := tts.NewHandler(ttsCfg, &textToSpeechLoggerAdapter{log})
		startWorker(tts.TaskType, handler)
	}

	// Email Send
	{
		emailCfg := buildEmailConfig(cfg)
		if err := emailCfg.Validate(); err != nil {
			zapLog.Fatal("invalid email configuration", zap.Error(err))
		}

		deps := es.ServiceDependencies{Logger: log}
		if emailCfg.Provider == "ses" {
			sesClient, err := aws.NewSESClient(ctx, emailCfg.AWSRegion)
			if err != nil {
				zapLog.Fatal("failed to create SES client", zap.Error(err))
			}
			deps.SES = sesClient

			if emailCfg.SNSTopicARN != "" {
				snsClient, err := aws.NewSNSClient(ctx, emailCfg.AWSRegion)
				if err != nil {
					zapLog.Fatal("failed to create SNS client", zap.Error(err))
				}
				deps.SNS = snsClient
			}
		}

		handler := es.NewHandler(emailCfg, deps)
		startWorker(es.TaskType, handler)
	}

	zapLog.Info("All workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// buildEmailConfig maps the application email section onto the worker config.
func buildEmailConfig(cfg *config.Config) *es.Config {
	emailCfg := es.DefaultConfig()
	emailCfg.Provider = cfg.Email.Provider
	emailCfg.SMTPHost = cfg.Email.SMTP.Host
	emailCfg.SMTPPort = cfg.Email.SMTP.Port
	emailCfg.SMTPUsername = cfg.Email.SMTP.Username
	emailCfg.SMTPPassword = cfg.Email.SMTP.Password
	emailCfg.UseTLS = cfg.Email.SMTP.UseTLS
	if cfg.Email.SMTP.DefaultFrom != "" {
		emailCfg.DefaultFrom = cfg.Email.SMTP.DefaultFrom
	}
	if cfg.Email.Provider == "ses" {
		emailCfg.AWSRegion = cfg.Email.AWS.Region
		emailCfg.SNSTopicARN = cfg.Email.AWS.SNS.TopicARN
		if cfg.Email.AWS.SES.FromEmail != "" {
			emailCfg.DefaultFrom = cfg.Email.AWS.SES.FromEmail
		}
	}
	if wcfg, ok := cfg.Workers[es.TaskType]; ok {
		emailCfg.Enabled = wcfg.Enabled
		if wcfg.MaxJobsActive > 0 {
			emailCfg.MaxJobsActive = wcfg.MaxJobsActive
		}
		if wcfg.Timeout > 0 {
			emailCfg.Timeout = time.Duration(wcfg.Timeout) * time.Millisecond
		}
	}
	return emailCfg
}

// Logger adapters for workers that declare their own Logger interfaces
type classifyIntentLoggerAdapter struct {
	logger.Logger
}

func (a *classifyIntentLoggerAdapter) With(fields map[string]interface{}) ci.Logger {
	return &classifyIntentLoggerAdapter{a.Logger.With(fields)}
}

type llmSynthesisLoggerAdapter struct {
	logger.Logger
}

func (a *llmSynthesisLoggerAdapter) With(fields map[string]interface{}) llm.Logger {
	return &llmSynthesisLoggerAdapter{a.Logger.With(fields)}
}

type textToSpeechLoggerAdapter struct {
	logger.Logger
}

func (a *textToSpeechLoggerAdapter) With(fields map[string]interface{}) tts.Logger {
	return &textToSpeechLoggerAdapter{a.Logger.With(fields)}
}
