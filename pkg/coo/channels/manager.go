// manager.go coordinates the registered communication channels: connecting
// them on startup, reporting their health, and tearing them down on shutdown.
// Message consumption happens per channel: the assistant runs one worker per
// registered channel so each transport processes its messages sequentially.
package channels

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Manager holds the registered channels and manages their lifecycle.
type Manager struct {
	channels map[string]Channel
	order    []string

	logger *slog.Logger

	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a channel manager with the provided logger.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		channels: make(map[string]Channel),
		logger:   logger,
	}
}

// Register adds a channel to the manager. Must be called before Start.
func (m *Manager) Register(ch Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := ch.Name()
	if _, exists := m.channels[name]; exists {
		return fmt.Errorf("channel %q already registered", name)
	}

	m.channels[name] = ch
	m.order = append(m.order, name)
	m.logger.Info("channel registered", "channel", name)
	return nil
}

// Start connects all registered channels. Channels that fail to connect are
// logged but do not prevent the others from starting.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	snapshot := m.Channels()
	if len(snapshot) == 0 {
		m.logger.Warn("no channels registered, running without messaging transports")
		return nil
	}

	var connected int
	for _, ch := range snapshot {
		if err := ch.Connect(m.ctx); err != nil {
			m.logger.Error("failed to connect channel",
				"channel", ch.Name(),
				"error", err,
			)
			continue
		}
		connected++
		m.logger.Info("channel connected", "channel", ch.Name())
	}

	if connected == 0 {
		return fmt.Errorf("%w: no channel could connect", ErrConnectionFailed)
	}
	return nil
}

// Stop disconnects all channels.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	for _, ch := range m.Channels() {
		if err := ch.Disconnect(); err != nil {
			m.logger.Warn("error disconnecting channel",
				"channel", ch.Name(),
				"error", err,
			)
		}
	}
}

// Channels returns the registered channels in registration order.
func (m *Manager) Channels() []Channel {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Channel, 0, len(m.order))
	for _, name := range m.order {
		result = append(result, m.channels[name])
	}
	return result
}

// Get returns a channel by name, or nil if not registered.
func (m *Manager) Get(name string) Channel {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.channels[name]
}

// Send routes an outgoing message to the named channel.
func (m *Manager) Send(ctx context.Context, channel, to string, msg *OutgoingMessage) error {
	ch := m.Get(channel)
	if ch == nil {
		return fmt.Errorf("channel %q not registered", channel)
	}
	return ch.Send(ctx, to, msg)
}

// HealthAll returns the health of every registered channel.
func (m *Manager) HealthAll() map[string]HealthStatus {
	result := make(map[string]HealthStatus)
	for _, ch := range m.Channels() {
		result[ch.Name()] = ch.Health()
	}
	return result
}
