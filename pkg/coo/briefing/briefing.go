// Package briefing runs the daily morning briefing job.
package briefing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

var riyadhZone = time.FixedZone("AST", 3*60*60)

// Config holds the briefing scheduler settings.
type Config struct {
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression evaluated in Riyadh time.
	// Defaults to 07:00 daily.
	Schedule string `yaml:"schedule"`
}

// DefaultConfig returns the briefing defaults. The job is off until
// explicitly enabled.
func DefaultConfig() Config {
	return Config{
		Enabled:  false,
		Schedule: "0 7 * * *",
	}
}

// Generator produces the briefing text for a given morning.
type Generator func(ctx context.Context) (string, error)

// Deliverer sends the briefing to the principal.
type Deliverer func(ctx context.Context, text string) error

// Scheduler fires the daily briefing.
type Scheduler struct {
	config   Config
	logger   *slog.Logger
	generate Generator
	deliver  Deliverer
	cron     *cron.Cron
}

// NewScheduler creates the scheduler. It does nothing until Start.
func NewScheduler(config Config, generate Generator, deliver Deliverer, logger *slog.Logger) *Scheduler {
	if config.Schedule == "" {
		config.Schedule = DefaultConfig().Schedule
	}
	return &Scheduler{
		config:   config,
		logger:   logger.With("component", "briefing"),
		generate: generate,
		deliver:  deliver,
	}
}

// Start registers the cron entry. Disabled config is a no-op.
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Debug("daily briefing disabled")
		return nil
	}

	s.cron = cron.New(cron.WithLocation(riyadhZone))
	if _, err := s.cron.AddFunc(s.config.Schedule, s.run); err != nil {
		return fmt.Errorf("schedule briefing: %w", err)
	}
	s.cron.Start()
	s.logger.Info("daily briefing scheduled", "schedule", s.config.Schedule)
	return nil
}

// Stop waits for a running briefing to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(10 * time.Second):
		s.logger.Warn("briefing stop timed out")
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	text, err := s.generate(ctx)
	if err != nil {
		s.logger.Error("briefing generation failed", "error", err)
		return
	}
	if err := s.deliver(ctx, text); err != nil {
		s.logger.Error("briefing delivery failed", "error", err)
		return
	}
	s.logger.Info("daily briefing delivered")
}
