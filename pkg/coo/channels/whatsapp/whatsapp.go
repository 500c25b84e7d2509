// Package whatsapp implements the WhatsApp channel using whatsmeow
// with a persistent SQLite session.
package whatsapp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"go.mau.fi/whatsmeow"
	waE2E "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"github.com/digitalcoo/coo/pkg/coo/channels"

	_ "github.com/mattn/go-sqlite3" // SQLite driver for session store.
)

// Config holds the WhatsApp channel settings.
type Config struct {
	// DatabasePath is the SQLite file holding the whatsmeow session.
	DatabasePath string `yaml:"database_path"`

	// AllowedNumber is the owner's phone number. Messages from any
	// other sender are dropped without a reply.
	AllowedNumber string `yaml:"allowed_number"`

	// ReconnectBackoff is the initial backoff for manual reconnects.
	ReconnectBackoff time.Duration `yaml:"reconnect_backoff"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DatabasePath:     "./data/whatsapp.db",
		ReconnectBackoff: 5 * time.Second,
	}
}

// Channel is the WhatsApp adapter. It carries text messages only and
// silently drops anything not coming from the configured owner.
type Channel struct {
	config Config
	logger *slog.Logger

	client   *whatsmeow.Client
	messages chan *channels.IncomingMessage

	ctx    context.Context
	cancel context.CancelFunc

	connected      atomic.Bool
	messagesClosed atomic.Bool
	reconnecting   atomic.Bool
	lastMessageAt  atomic.Int64
	errorCount     atomic.Int64
}

// NewChannel creates the adapter.
func NewChannel(config Config, logger *slog.Logger) *Channel {
	if config.DatabasePath == "" {
		config.DatabasePath = DefaultConfig().DatabasePath
	}
	if config.ReconnectBackoff <= 0 {
		config.ReconnectBackoff = DefaultConfig().ReconnectBackoff
	}
	return &Channel{
		config:   config,
		logger:   logger.With("component", "whatsapp"),
		messages: make(chan *channels.IncomingMessage, 256),
	}
}

func (c *Channel) Name() string { return "whatsapp" }

// Connect opens the session store and connects the client. With no
// stored session it starts the QR login in the background so the rest
// of the daemon keeps running.
func (c *Channel) Connect(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(context.Background())

	container, err := sqlstore.New(c.ctx, "sqlite3",
		fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL", c.config.DatabasePath),
		waLog.Noop)
	if err != nil {
		return fmt.Errorf("creating session store: %w", err)
	}

	device, err := c.getDevice(c.ctx, container)
	if err != nil {
		return fmt.Errorf("getting device: %w", err)
	}

	store.SetOSInfo("DigitalCOO", [3]uint32{1, 0, 0})

	c.client = whatsmeow.NewClient(device, waLog.Noop)
	c.client.AddEventHandler(c.handleEvent)
	c.client.EnableAutoReconnect = true
	c.client.InitialAutoReconnect = true

	if c.client.Store.ID == nil {
		c.logger.Info("no existing session, QR login required")
		go func() {
			if err := c.loginWithQR(c.ctx); err != nil {
				c.logger.Warn("qr login pending", "error", err)
			}
		}()
		return nil
	}

	if err := c.client.Connect(); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}

	c.connected.Store(true)
	c.logger.Info("connected with existing session")
	return nil
}

func (c *Channel) getDevice(ctx context.Context, container *sqlstore.Container) (*store.Device, error) {
	devices, err := container.GetAllDevices(ctx)
	if err != nil {
		return nil, err
	}
	if len(devices) > 0 {
		return devices[0], nil
	}
	return container.NewDevice(), nil
}

// loginWithQR drives the first-time pairing flow. The code is logged
// for the operator to scan.
func (c *Channel) loginWithQR(ctx context.Context) error {
	qrChan, err := c.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("getting QR channel: %w", err)
	}

	if err := c.client.Connect(); err != nil {
		return fmt.Errorf("connecting for QR: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-qrChan:
			if !ok {
				return fmt.Errorf("QR channel closed unexpectedly")
			}
			switch evt.Event {
			case "code":
				c.logger.Info("scan QR code to link device", "code", evt.Code)
			case "success":
				c.connected.Store(true)
				c.logger.Info("login successful")
				return nil
			case "timeout":
				return fmt.Errorf("QR code timeout")
			default:
				if evt.Error != nil {
					return fmt.Errorf("QR login: %w", evt.Error)
				}
			}
		}
	}
}

// Disconnect closes the connection and the message stream.
func (c *Channel) Disconnect() error {
	c.connected.Store(false)
	if c.cancel != nil {
		c.cancel()
	}
	if c.client != nil {
		c.client.Disconnect()
	}
	if c.messagesClosed.CompareAndSwap(false, true) {
		close(c.messages)
	}
	c.logger.Info("disconnected")
	return nil
}

// Send delivers a text message to the given JID or phone number.
func (c *Channel) Send(ctx context.Context, to string, msg *channels.OutgoingMessage) error {
	if !c.connected.Load() {
		return channels.ErrChannelDisconnected
	}

	jid, err := parseJID(to)
	if err != nil {
		return fmt.Errorf("invalid JID %q: %w", to, err)
	}

	waMsg := &waE2E.Message{Conversation: proto.String(msg.Content)}
	if _, err := c.client.SendMessage(ctx, jid, waMsg); err != nil {
		c.errorCount.Add(1)
		return fmt.Errorf("%w: %v", channels.ErrSendFailed, err)
	}
	return nil
}

func (c *Channel) Receive() <-chan *channels.IncomingMessage { return c.messages }

func (c *Channel) IsConnected() bool { return c.connected.Load() }

func (c *Channel) Health() channels.HealthStatus {
	status := channels.HealthStatus{
		Connected:  c.connected.Load(),
		ErrorCount: int(c.errorCount.Load()),
	}
	if ts := c.lastMessageAt.Load(); ts > 0 {
		status.LastMessageAt = time.Unix(ts, 0)
	}
	return status
}

// parseJID converts a phone number or full JID string to types.JID.
func parseJID(s string) (types.JID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.JID{}, fmt.Errorf("empty JID")
	}
	if strings.Contains(s, "@") {
		return types.ParseJID(s)
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if len(digits) < 10 {
		return types.JID{}, fmt.Errorf("phone number too short: %s", s)
	}
	return types.NewJID(digits, types.DefaultUserServer), nil
}

var _ channels.Channel = (*Channel)(nil)
