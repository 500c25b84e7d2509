// Package telegram implements the Telegram channel over the Bot API.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/digitalcoo/coo/pkg/coo/channels"
)

// rejectionReply is sent to anyone other than the configured owner.
const rejectionReply = "عذراً، هذا المساعد مخصص للاستخدام الخاص فقط."

// Bot is the slice of the Bot API the channel uses. Wrapping the SDK
// client behind it keeps the update loop testable.
type Bot interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetSelf() tgbotapi.User
}

type botWrapper struct {
	bot *tgbotapi.BotAPI
}

func (w *botWrapper) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return w.bot.GetUpdatesChan(config)
}

func (w *botWrapper) StopReceivingUpdates() { w.bot.StopReceivingUpdates() }

func (w *botWrapper) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return w.bot.Send(c)
}

func (w *botWrapper) GetSelf() tgbotapi.User { return w.bot.Self }

// BotFactory creates Bot instances. Tests inject a fake.
type BotFactory func(token string, client *http.Client) (Bot, error)

func defaultBotFactory(token string, client *http.Client) (Bot, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, err
	}
	return &botWrapper{bot: bot}, nil
}

// Config holds the Telegram channel settings.
type Config struct {
	Token         string `yaml:"token"`
	AllowedUserID int64  `yaml:"allowed_user_id"`
}

// Channel is the Telegram adapter. Only the configured owner's
// messages reach Receive; everyone else gets a fixed rejection reply.
type Channel struct {
	config Config
	logger *slog.Logger

	bot       Bot
	messages  chan *channels.IncomingMessage
	connected atomic.Bool
	cancel    context.CancelFunc
	pollDone  chan struct{}

	lastMessageAt atomic.Int64
	errorCount    atomic.Int64
}

// NewChannel creates the adapter and authenticates the bot. A missing
// or malformed token fails here, at startup.
func NewChannel(config Config, logger *slog.Logger) (*Channel, error) {
	return newChannel(config, logger, defaultBotFactory)
}

func newChannel(config Config, logger *slog.Logger, factory BotFactory) (*Channel, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("telegram: token is required")
	}
	bot, err := factory(config.Token, http.DefaultClient)
	if err != nil {
		return nil, fmt.Errorf("telegram: authenticating bot: %w", err)
	}
	return &Channel{
		config:   config,
		logger:   logger.With("component", "telegram"),
		bot:      bot,
		messages: make(chan *channels.IncomingMessage, 256),
	}, nil
}

func (c *Channel) Name() string { return "telegram" }

// Connect starts the update loop.
func (c *Channel) Connect(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.pollDone = make(chan struct{})

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := c.bot.GetUpdatesChan(u)

	c.connected.Store(true)
	c.logger.Info("connected", "bot", c.bot.GetSelf().UserName)

	go func() {
		defer close(c.pollDone)
		c.pollUpdates(loopCtx, updates)
	}()
	return nil
}

func (c *Channel) pollUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			c.handleMessage(update.Message)
		case <-ctx.Done():
			return
		}
	}
}

func (c *Channel) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil || msg.Text == "" {
		return
	}

	if msg.From.ID != c.config.AllowedUserID {
		c.logger.Warn("rejected message from unknown user",
			"user_id", msg.From.ID, "username", msg.From.UserName)
		reply := tgbotapi.NewMessage(msg.Chat.ID, rejectionReply)
		if _, err := c.bot.Send(reply); err != nil {
			c.errorCount.Add(1)
			c.logger.Error("failed to send rejection", "error", err)
		}
		return
	}

	c.lastMessageAt.Store(time.Now().Unix())

	incoming := &channels.IncomingMessage{
		ID:        strconv.Itoa(msg.MessageID),
		Channel:   c.Name(),
		From:      strconv.FormatInt(msg.From.ID, 10),
		FromName:  msg.From.UserName,
		ChatID:    strconv.FormatInt(msg.Chat.ID, 10),
		Content:   msg.Text,
		Timestamp: time.Unix(int64(msg.Date), 0),
	}

	select {
	case c.messages <- incoming:
	default:
		c.logger.Warn("message buffer full, dropping message")
	}
}

// Disconnect stops polling and closes the message stream. The poll
// loop may be mid-delivery, so the close waits for it to exit.
func (c *Channel) Disconnect() error {
	if !c.connected.CompareAndSwap(true, false) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.bot.StopReceivingUpdates()
	if c.pollDone != nil {
		<-c.pollDone
	}
	close(c.messages)
	c.logger.Info("disconnected")
	return nil
}

// Send delivers a text reply to the given chat id.
func (c *Channel) Send(ctx context.Context, to string, msg *channels.OutgoingMessage) error {
	if !c.connected.Load() {
		return channels.ErrChannelDisconnected
	}

	chatID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: invalid chat id %q: %w", to, err)
	}

	out := tgbotapi.NewMessage(chatID, msg.Content)
	if msg.ReplyTo != "" {
		if replyID, err := strconv.Atoi(msg.ReplyTo); err == nil {
			out.ReplyToMessageID = replyID
		}
	}

	if _, err := c.bot.Send(out); err != nil {
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

var _ channels.Channel = (*Channel)(nil)
