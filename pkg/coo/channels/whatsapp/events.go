package whatsapp

import (
	"strings"
	"time"

	waE2E "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/digitalcoo/coo/pkg/coo/channels"
)

// handleEvent is the whatsmeow event dispatcher.
func (c *Channel) handleEvent(rawEvt interface{}) {
	switch evt := rawEvt.(type) {
	case *events.Message:
		c.handleMessageEvt(evt)

	case *events.Connected:
		c.connected.Store(true)
		c.errorCount.Store(0)
		c.logger.Info("connection established")

	case *events.Disconnected:
		c.connected.Store(false)
		c.logger.Warn("disconnected, auto-reconnect will retry")

	case *events.StreamReplaced:
		c.connected.Store(false)
		c.logger.Error("stream replaced by another client, reconnecting")
		go c.attemptReconnect()

	case *events.LoggedOut:
		c.connected.Store(false)
		c.logger.Error("logged out, session must be re-linked", "reason", evt.Reason)

	case *events.KeepAliveTimeout:
		c.logger.Warn("keepalive timeout", "error_count", evt.ErrorCount)
	}
}

// attemptReconnect retries the connection with growing backoff. The
// guard keeps concurrent event handlers from stacking retries.
func (c *Channel) attemptReconnect() {
	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}
	defer c.reconnecting.Store(false)

	backoff := c.config.ReconnectBackoff
	for attempt := 1; attempt <= 10; attempt++ {
		select {
		case <-c.ctx.Done():
			return
		case <-time.After(backoff):
		}

		c.logger.Info("reconnecting", "attempt", attempt)
		if err := c.client.Connect(); err == nil {
			return
		}
		if backoff < 2*time.Minute {
			backoff *= 2
		}
	}
	c.logger.Error("reconnect attempts exhausted")
}

func (c *Channel) handleMessageEvt(evt *events.Message) {
	c.lastMessageAt.Store(time.Now().Unix())

	if evt.Info.IsFromMe {
		return
	}
	if evt.Info.Chat.Server == "broadcast" {
		return
	}
	if evt.Info.IsGroup {
		return
	}

	sender := evt.Info.Sender.String()
	if !c.isAllowed(sender) {
		c.logger.Debug("dropping message from unknown sender", "sender", sender)
		return
	}

	content := extractText(evt.Message)
	if content == "" {
		return
	}

	c.emit(&channels.IncomingMessage{
		ID:        string(evt.Info.ID),
		Channel:   c.Name(),
		From:      sender,
		FromName:  evt.Info.PushName,
		ChatID:    evt.Info.Chat.String(),
		Content:   content,
		Timestamp: evt.Info.Timestamp,
	})
}

// isAllowed checks the sender JID against the owner's number. The JID
// carries server and device suffixes, so a substring match on the
// configured digits is used.
func (c *Channel) isAllowed(senderJID string) bool {
	if c.config.AllowedNumber == "" {
		return false
	}
	return strings.Contains(senderJID, c.config.AllowedNumber)
}

// extractText pulls the text out of plain and extended messages.
// Other message types are ignored.
func extractText(waMsg *waE2E.Message) string {
	if waMsg == nil {
		return ""
	}
	if waMsg.Conversation != nil {
		return waMsg.GetConversation()
	}
	if ext := waMsg.ExtendedTextMessage; ext != nil {
		return ext.GetText()
	}
	return ""
}

func (c *Channel) emit(msg *channels.IncomingMessage) {
	if c.messagesClosed.Load() {
		return
	}
	select {
	case c.messages <- msg:
	default:
		c.logger.Warn("message buffer full, dropping message")
	}
}
