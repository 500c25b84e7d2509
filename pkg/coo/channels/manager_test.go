package channels

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

type stubChannel struct {
	name       string
	connectErr error
	connected  bool
	msgs       chan *IncomingMessage
}

func newStubChannel(name string, connectErr error) *stubChannel {
	return &stubChannel{name: name, connectErr: connectErr, msgs: make(chan *IncomingMessage)}
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Connect(ctx context.Context) error {
	if s.connectErr != nil {
		return s.connectErr
	}
	s.connected = true
	return nil
}

func (s *stubChannel) Disconnect() error {
	s.connected = false
	return nil
}

func (s *stubChannel) Send(ctx context.Context, to string, msg *OutgoingMessage) error {
	if !s.connected {
		return ErrChannelDisconnected
	}
	return nil
}

func (s *stubChannel) Receive() <-chan *IncomingMessage { return s.msgs }
func (s *stubChannel) IsConnected() bool                { return s.connected }
func (s *stubChannel) Health() HealthStatus             { return HealthStatus{Connected: s.connected} }

func TestManagerStart(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("connects registered channels", func(t *testing.T) {
		m := NewManager(logger)
		a := newStubChannel("telegram", nil)
		b := newStubChannel("whatsapp", nil)
		m.Register(a)
		m.Register(b)

		if err := m.Start(context.Background()); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if !a.connected || !b.connected {
			t.Error("channels not connected after Start")
		}
	})

	t.Run("partial failure still starts", func(t *testing.T) {
		m := NewManager(logger)
		m.Register(newStubChannel("telegram", errors.New("bad token")))
		ok := newStubChannel("whatsapp", nil)
		m.Register(ok)

		if err := m.Start(context.Background()); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if !ok.connected {
			t.Error("healthy channel not connected")
		}
	})

	t.Run("all failures is an error", func(t *testing.T) {
		m := NewManager(logger)
		m.Register(newStubChannel("telegram", errors.New("bad token")))

		if err := m.Start(context.Background()); !errors.Is(err, ErrConnectionFailed) {
			t.Fatalf("Start() error = %v, want ErrConnectionFailed", err)
		}
	})

	t.Run("duplicate registration rejected", func(t *testing.T) {
		m := NewManager(logger)
		if err := m.Register(newStubChannel("telegram", nil)); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if err := m.Register(newStubChannel("telegram", nil)); err == nil {
			t.Fatal("expected error for duplicate channel name")
		}
	})
}

func TestManagerSend(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	m := NewManager(logger)
	ch := newStubChannel("telegram", nil)
	m.Register(ch)
	m.Start(context.Background())

	if err := m.Send(context.Background(), "telegram", "777", &OutgoingMessage{Content: "hi"}); err != nil {
		t.Errorf("Send() error = %v", err)
	}
	if err := m.Send(context.Background(), "discord", "777", &OutgoingMessage{Content: "hi"}); err == nil {
		t.Error("expected error for unknown channel")
	}
}
