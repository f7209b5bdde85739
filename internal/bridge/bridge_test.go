package bridge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/vegancheck/internal/model"
)

func newTestBus() *Bus {
	return NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// run starts the endpoint loop and stops it when the test ends.
func run(t *testing.T, e *Endpoint) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = e.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-e.Done()
	})
}

func TestSend(t *testing.T) {
	t.Parallel()

	t.Run("handler response is returned", func(t *testing.T) {
		t.Parallel()

		bus := newTestBus()
		page := bus.Endpoint(EndpointPage)
		page.Handle(KindGetLoggingState, func(context.Context, Message) Response {
			enabled := true
			return Response{Status: StatusLoggingState, Enabled: &enabled}
		})
		run(t, page)

		resp, err := bus.Send(context.Background(), EndpointPage, Message{Kind: KindGetLoggingState})
		if err != nil {
			t.Fatalf("failed to send: %v", err)
		}
		if resp.Status != StatusLoggingState || resp.Enabled == nil || !*resp.Enabled {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("zero response is acknowledged as received", func(t *testing.T) {
		t.Parallel()

		bus := newTestBus()
		bg := bus.Endpoint(EndpointBackground)
		var got *model.PageContent
		bg.Handle(KindContentForAnalysis, func(_ context.Context, msg Message) Response {
			got = msg.Content
			return Response{}
		})
		run(t, bg)

		content := model.PageContent{URL: "https://shop.example/p/1"}
		resp, err := bus.Send(context.Background(), EndpointBackground, Message{Kind: KindContentForAnalysis, Content: &content})
		if err != nil {
			t.Fatalf("failed to send: %v", err)
		}
		if resp.Status != StatusReceived {
			t.Errorf("expected received, got %q", resp.Status)
		}
		if got == nil || got.URL != content.URL {
			t.Errorf("handler did not receive content: %+v", got)
		}
	})

	t.Run("unknown kind is ignored", func(t *testing.T) {
		t.Parallel()

		bus := newTestBus()
		run(t, bus.Endpoint(EndpointPage))

		resp, err := bus.Send(context.Background(), EndpointPage, Message{Kind: "UNKNOWN"})
		if err != nil || resp.Status != StatusIgnored {
			t.Errorf("expected ignored, got %+v, %v", resp, err)
		}
	})

	t.Run("panicking handler still answers", func(t *testing.T) {
		t.Parallel()

		bus := newTestBus()
		page := bus.Endpoint(EndpointPage)
		page.Handle(KindTriggerAnalysis, func(context.Context, Message) Response { panic("boom") })
		run(t, page)

		resp, err := bus.Send(context.Background(), EndpointPage, Message{Kind: KindTriggerAnalysis})
		if err != nil || resp.Status != StatusError {
			t.Errorf("expected error status, got %+v, %v", resp, err)
		}
	})

	t.Run("unknown endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := newTestBus().Send(context.Background(), "nowhere", Message{Kind: KindTriggerAnalysis})
		if !errors.Is(err, ErrUnknownEndpoint) {
			t.Errorf("expected ErrUnknownEndpoint, got %v", err)
		}
	})

	t.Run("closed endpoint", func(t *testing.T) {
		t.Parallel()

		bus := newTestBus()
		page := bus.Endpoint(EndpointPage)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_ = page.Run(ctx)

		_, err := bus.Send(context.Background(), EndpointPage, Message{Kind: KindTriggerAnalysis})
		if !errors.Is(err, ErrEndpointClosed) {
			t.Errorf("expected ErrEndpointClosed, got %v", err)
		}
	})

	t.Run("sender context bounds the wait", func(t *testing.T) {
		t.Parallel()

		bus := newTestBus()
		bus.Endpoint(EndpointPage) // never run

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := bus.Send(ctx, EndpointPage, Message{Kind: KindTriggerAnalysis})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})
}

func TestEndpointRunsTasksOneAtATime(t *testing.T) {
	t.Parallel()

	bus := newTestBus()
	e := bus.Endpoint(EndpointBackground)
	run(t, e)

	var (
		active  atomic.Int32
		overlap atomic.Bool
		wg      sync.WaitGroup
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.Call(context.Background(), func(context.Context) error {
				if active.Add(1) > 1 {
					overlap.Store(true)
				}
				time.Sleep(time.Millisecond)
				active.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	if overlap.Load() {
		t.Error("tasks overlapped on a single endpoint")
	}
}

func TestPort(t *testing.T) {
	t.Parallel()

	t.Run("disconnect fires hooks once on the receiver", func(t *testing.T) {
		t.Parallel()

		bus := newTestBus()
		bg := bus.Endpoint(EndpointBackground)
		fired := make(chan string, 4)
		bg.OnConnect(func(p *Port) {
			if p.Name() != PanelPort {
				return
			}
			p.OnDisconnect(func() { fired <- p.Name() })
		})
		run(t, bg)

		port, err := bus.Connect(context.Background(), EndpointBackground, PanelPort)
		if err != nil {
			t.Fatalf("failed to connect: %v", err)
		}

		port.Disconnect()
		port.Disconnect()

		select {
		case name := <-fired:
			if name != PanelPort {
				t.Errorf("unexpected port %q", name)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("disconnect hook did not run")
		}

		select {
		case <-port.Done():
		default:
			t.Error("expected port to be done")
		}

		// Flush the loop so a duplicate hook would have run by now.
		_ = bg.Call(context.Background(), func(context.Context) error { return nil })
		if len(fired) != 0 {
			t.Errorf("disconnect hook ran more than once")
		}
	})

	t.Run("connect hooks run in registration order", func(t *testing.T) {
		t.Parallel()

		bus := newTestBus()
		bg := bus.Endpoint(EndpointBackground)
		order := make(chan int, 2)
		bg.OnConnect(func(*Port) { order <- 1 })
		bg.OnConnect(func(*Port) {
			// Registering from inside a hook must not affect the running batch.
			bg.OnConnect(func(*Port) {})
			order <- 2
		})
		run(t, bg)

		if _, err := bus.Connect(context.Background(), EndpointBackground, PanelPort); err != nil {
			t.Fatalf("failed to connect: %v", err)
		}

		for want := 1; want <= 2; want++ {
			select {
			case got := <-order:
				if got != want {
					t.Errorf("hook %d ran, want %d", got, want)
				}
			case <-time.After(2 * time.Second):
				t.Fatalf("hook %d did not run", want)
			}
		}
	})

	t.Run("connect to unknown endpoint", func(t *testing.T) {
		t.Parallel()

		if _, err := newTestBus().Connect(context.Background(), "nowhere", PanelPort); !errors.Is(err, ErrUnknownEndpoint) {
			t.Errorf("expected ErrUnknownEndpoint, got %v", err)
		}
	})
}
