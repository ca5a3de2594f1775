package convert

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/athapong/adfconv/pkg/metrics"
)

// Job is one document queued for conversion. Output and Err are set by the
// pipeline.
type Job struct {
	ID        uuid.UUID
	Direction Direction
	Input     []byte

	Output []byte
	Err    error
}

// NewJob returns a job with a fresh id.
func NewJob(direction Direction, input []byte) *Job {
	return &Job{ID: uuid.New(), Direction: direction, Input: input}
}

// Pipeline converts documents concurrently in bounded batches.
type Pipeline struct {
	conv      *Converter
	logger    *logrus.Logger
	metrics   *metrics.Metrics
	batchSize int
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithBatchSize sets how many documents are converted at once.
func WithBatchSize(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

func WithPipelineLogger(logger *logrus.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPipelineMetrics reports the queue length to m.
func WithPipelineMetrics(m *metrics.Metrics) PipelineOption {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// NewPipeline creates a pipeline converting with conv.
func NewPipeline(conv *Converter, opts ...PipelineOption) *Pipeline {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	p := &Pipeline{
		conv:      conv,
		logger:    logger,
		batchSize: 10,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BatchProcess converts every job. Each job records its own result; the
// returned error is the failure of the lowest-indexed failing job, or the
// context error if ctx was cancelled. Jobs not started before cancellation
// get ctx.Err().
func (p *Pipeline) BatchProcess(ctx context.Context, jobs []*Job) error {
	p.logger.WithField("document_count", len(jobs)).Info("Starting batch conversion")
	p.metrics.QueueLength(len(jobs))
	defer p.metrics.QueueLength(0)

	var first error
	for i := 0; i < len(jobs); i += p.batchSize {
		end := min(i+p.batchSize, len(jobs))

		if err := ctx.Err(); err != nil {
			for _, job := range jobs[i:] {
				job.Err = err
			}
			p.logger.WithError(err).Warn("Batch conversion cancelled")
			return err
		}

		batch := jobs[i:end]
		errs := make([]error, len(batch))
		var wg sync.WaitGroup

		for k, job := range batch {
			wg.Add(1)
			go func(k int, j *Job) {
				defer wg.Done()
				if err := p.Process(ctx, j); err != nil {
					errs[k] = errors.Wrapf(err, "job %s", j.ID)
				}
			}(k, job)
		}

		wg.Wait()
		p.metrics.QueueLength(len(jobs) - end)

		for _, err := range errs {
			if first == nil && err != nil {
				first = err
			}
		}
	}

	if first != nil {
		return errors.Wrap(first, "batch conversion failed")
	}
	p.logger.Info("Batch conversion completed successfully")
	return nil
}

// Process converts a single job.
func (p *Pipeline) Process(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("cannot process nil job")
	}
	if err := ctx.Err(); err != nil {
		job.Err = err
		return err
	}

	log := p.logger.WithFields(logrus.Fields{"job_id": job.ID, "direction": job.Direction})
	log.Debug("Converting document")

	job.Output, job.Err = p.conv.Convert(job.Direction, job.Input)
	if job.Err != nil {
		log.WithError(job.Err).Error("Failed to convert document")
		return job.Err
	}
	return nil
}
