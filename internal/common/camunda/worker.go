package camunda

import (
	"context"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"shopchat-workers/internal/common/metrics"
)

// JobHandler must return an error (required by Zeebe client)
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

type CamundaWorker struct {
	client   zbc.Client
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

func NewWorker(
	client zbc.Client,
	taskType string,
	maxJobsActive int,
	timeout time.Duration,
	handler JobHandler,
	logger *zap.Logger,
) *CamundaWorker {
	// Wrap handler to match Zeebe's expected signature
	builder := client.NewJobWorker().
		JobType(taskType).
		Handler(func(client worker.JobClient, job entities.Job) {
			start := time.Now()
			metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
			err := handler.Handle(client, job)
			metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())

			if err != nil {
				metrics.WorkerJobsFailed.WithLabelValues(taskType, errorCodeLabel(err)).Inc()
				logger.Error("Handler returned error", zap.Error(err), zap.Int64("jobKey", job.Key))
				return
			}
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}).
		MaxJobsActive(maxJobsActive)
	if timeout > 0 {
		builder = builder.Timeout(timeout)
	}
	jobWorker := builder.Open()

	return &CamundaWorker{
		client:   client,
		worker:   jobWorker,
		logger:   logger,
		taskType: taskType,
	}
}

// errorCodeLabel keeps the failure label bounded: handlers wrap their
// sentinel codes as the error prefix, so everything after the first colon
// is detail, not code.
func errorCodeLabel(err error) string {
	s := err.Error()
	if i := strings.Index(s, ":"); i > 0 {
		s = s[:i]
	}
	if len(s) > 64 {
		s = s[:64]
	}
	return s
}

func (w *CamundaWorker) Start() {
	w.logger.Info("worker started", zap.String("taskType", w.taskType))
}

// Stop closes the job worker. The shared Zeebe client is closed by the
// owner, not here.
func (w *CamundaWorker) Stop(ctx context.Context) {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
}
