package ws

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

// stubBus hands Subscribe a caller-controlled channel and accepts publishes.
type stubBus struct {
	ch chan []byte
}

func (s *stubBus) Publish(ctx context.Context, channel string, payload []byte) error {
	return nil
}

func (s *stubBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return s.ch, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBroadcastReachesRegisteredClient(t *testing.T) {
	bus := &stubBus{ch: make(chan []byte, 1)}
	hub := NewHub(bus, discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c := &client{hub: hub, send: make(chan []byte, sendBufferSize)}
	hub.register <- c

	bus.ch <- []byte(`{"cycleId":"abc"}`)

	select {
	case msg := <-c.send:
		if string(msg) != `{"cycleId":"abc"}` {
			t.Fatalf("message = %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast never reached the client")
	}
}

func TestShutdownReleasesClientGoroutines(t *testing.T) {
	bus := &stubBus{ch: make(chan []byte)}
	hub := NewHub(bus, discard())

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- hub.Run(ctx) }()

	c := &client{hub: hub, send: make(chan []byte, sendBufferSize)}
	hub.register <- c

	cancel()
	select {
	case <-runDone:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	// A client tearing down after the hub has stopped must not block on the
	// unregister channel.
	released := make(chan struct{})
	go func() {
		c.disconnect()
		close(released)
	}()
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("disconnect blocked after hub shutdown")
	}
}

func TestShutdownClosesClientSendChannels(t *testing.T) {
	bus := &stubBus{ch: make(chan []byte)}
	hub := NewHub(bus, discard())

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- hub.Run(ctx) }()

	c := &client{hub: hub, send: make(chan []byte, sendBufferSize)}
	hub.register <- c

	cancel()
	<-runDone

	select {
	case _, ok := <-c.send:
		if ok {
			t.Fatal("expected send channel to be closed, got a message")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel left open after shutdown")
	}
}
