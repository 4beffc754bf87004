package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/consulta/internal/shared/domain"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/eventbus"
)

// ProcessorConfig tunes the relay loop.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
}

// DefaultProcessorConfig polls ten times a second and gives up on a message
// after five failed deliveries.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     100 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}
}

// Stats is a snapshot of the relay's progress, served on the worker's
// health endpoint.
type Stats struct {
	IsRunning       bool
	PublishedCount  uint64
	FailedCount     uint64
	DeadCount       uint64
	LagSeconds      float64
	LastError       string
	LastErrorAt     *time.Time
	LastProcessedAt *time.Time
	OldestMessageAt *time.Time
}

// Processor relays committed outbox messages to a publisher: RabbitMQ in
// the worker, the in-process bus otherwise. Failed deliveries back off
// exponentially and are dead-lettered after MaxRetries attempts.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	stats  Stats
}

// NewProcessor wires a relay. A nil logger falls back to slog.Default.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger.With("component", "outbox"),
		now:       time.Now,
	}
}

// Start launches the polling loop. Starting a running processor is a no-op.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.stats.IsRunning = true
	go p.loop(loopCtx, p.done)

	p.logger.Info("outbox relay started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
		"max_retries", p.config.MaxRetries,
	)
	return nil
}

// Stop cancels the loop and waits for the in-flight batch to finish.
func (p *Processor) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.stats.IsRunning = false
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Info("outbox relay stopped")
}

// IsRunning reports whether the loop is active.
func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// ProcessOnce relays a single batch in the caller's goroutine. Short-lived
// commands use it to flush events before exiting.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	return p.relayBatch(ctx)
}

// GetStats returns a copy of the current counters.
func (p *Processor) GetStats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Processor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.relayBatch(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("outbox batch failed", "error", err)
			}
		}
	}
}

func (p *Processor) relayBatch(ctx context.Context) error {
	messages, err := p.repo.GetUnpublished(ctx, p.config.BatchSize)
	if err != nil {
		p.update(func(s *Stats) { p.noteError(s, err) })
		return err
	}
	p.noteBatch(messages)

	for _, msg := range messages {
		if err := p.publish(ctx, msg); err != nil {
			p.settleFailure(ctx, msg, err)
			continue
		}
		if err := p.repo.MarkPublished(ctx, msg.ID); err != nil {
			// The message will be delivered again; consumers dedupe on event id.
			p.logger.Error("could not mark message published",
				"id", msg.ID, "event_id", msg.EventID, "error", err)
			continue
		}
		p.update(func(s *Stats) { s.PublishedCount++ })
	}
	return nil
}

func (p *Processor) publish(ctx context.Context, msg *Message) error {
	body, err := msg.Envelope()
	if err != nil {
		return err
	}
	return p.publisher.Publish(ctx, msg.RoutingKey, body)
}

func (p *Processor) settleFailure(ctx context.Context, msg *Message, cause error) {
	reason := cause.Error()
	dead := p.config.MaxRetries <= 0 || msg.RetryCount+1 >= p.config.MaxRetries

	p.logger.Warn("event delivery failed",
		append(traceAttrs(msg),
			"id", msg.ID,
			"routing_key", msg.RoutingKey,
			"attempt", msg.RetryCount+1,
			"dead_letter", dead,
			"error", cause,
		)...,
	)

	var err error
	if dead {
		p.update(func(s *Stats) {
			s.DeadCount++
			p.noteError(s, cause)
		})
		err = p.repo.MarkDead(ctx, msg.ID, reason)
	} else {
		p.update(func(s *Stats) {
			s.FailedCount++
			p.noteError(s, cause)
		})
		err = p.repo.MarkFailed(ctx, msg.ID, reason, p.now().Add(p.backoff(msg.RetryCount+1)))
	}
	if err != nil {
		p.logger.Error("could not record delivery failure", "id", msg.ID, "error", err)
	}
}

// backoff doubles RetryBackoffBase for every attempt, capped at
// RetryBackoffMax.
func (p *Processor) backoff(attempt int) time.Duration {
	base, ceiling := p.config.RetryBackoffBase, p.config.RetryBackoffMax
	if base <= 0 {
		base = time.Second
	}
	if ceiling <= 0 {
		ceiling = time.Minute
	}
	if attempt < 1 {
		attempt = 1
	}
	d := base * time.Duration(1<<convert.IntToUintClamped(attempt-1))
	if d <= 0 || d > ceiling {
		return ceiling
	}
	return d
}

// traceAttrs pulls the correlation chain and acting account out of the
// stored metadata for log lines.
func traceAttrs(msg *Message) []any {
	attrs := []any{"event_id", msg.EventID}
	if len(msg.Metadata) == 0 {
		return attrs
	}
	var meta domain.EventMetadata
	if err := json.Unmarshal(msg.Metadata, &meta); err != nil {
		return attrs
	}
	return append(attrs,
		"correlation_id", meta.CorrelationID,
		"causation_id", meta.CausationID,
		"account_id", meta.AccountID,
	)
}

func (p *Processor) update(fn func(*Stats)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(&p.stats)
}

// noteError must be called with p.mu held.
func (p *Processor) noteError(s *Stats, err error) {
	at := p.now()
	s.LastError = err.Error()
	s.LastErrorAt = &at
}

func (p *Processor) noteBatch(messages []*Message) {
	at := p.now()
	p.update(func(s *Stats) {
		s.LastProcessedAt = &at
		s.OldestMessageAt = nil
		s.LagSeconds = 0
		for _, msg := range messages {
			if s.OldestMessageAt == nil || msg.CreatedAt.Before(*s.OldestMessageAt) {
				oldest := msg.CreatedAt
				s.OldestMessageAt = &oldest
			}
		}
		if s.OldestMessageAt != nil {
			s.LagSeconds = at.Sub(*s.OldestMessageAt).Seconds()
		}
	})
}
