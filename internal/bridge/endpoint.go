package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Handler answers one message. A zero Response is sent as
// {status: "received"}.
type Handler func(ctx context.Context, msg Message) Response

type task func(ctx context.Context)

// Endpoint is the event loop of one context.
type Endpoint struct {
	name   string
	logger *slog.Logger
	inbox  chan task

	closeOnce sync.Once
	closed    chan struct{}

	mu           sync.RWMutex
	handlers     map[Kind]Handler
	connectHooks []func(*Port)
}

// Name returns the endpoint name.
func (e *Endpoint) Name() string {
	return e.name
}

// Handle registers h for messages of kind, replacing any previous handler.
func (e *Endpoint) Handle(kind Kind, h Handler) {
	e.mu.Lock()
	e.handlers[kind] = h
	e.mu.Unlock()
}

// OnConnect registers fn to run on the loop whenever a port is opened to
// this endpoint.
func (e *Endpoint) OnConnect(fn func(*Port)) {
	e.mu.Lock()
	e.connectHooks = append(e.connectHooks, fn)
	e.mu.Unlock()
}

// Run drains the inbox until ctx is done. Tasks still queued when Run
// returns are dropped and their senders get ErrEndpointClosed.
func (e *Endpoint) Run(ctx context.Context) error {
	defer e.close()

	e.logger.Debug("endpoint started")
	for {
		select {
		case <-ctx.Done():
			e.logger.Debug("endpoint stopped")
			return nil
		case t := <-e.inbox:
			t(ctx)
		}
	}
}

// Done is closed when the endpoint stops running.
func (e *Endpoint) Done() <-chan struct{} {
	return e.closed
}

// Post queues fn to run on the loop and returns without waiting for it.
func (e *Endpoint) Post(ctx context.Context, fn func(ctx context.Context)) error {
	select {
	case <-e.closed:
		return fmt.Errorf("%w: %s", ErrEndpointClosed, e.name)
	default:
	}

	select {
	case e.inbox <- fn:
		return nil
	case <-e.closed:
		return fmt.Errorf("%w: %s", ErrEndpointClosed, e.name)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Call runs fn on the loop and waits for its result.
func (e *Endpoint) Call(ctx context.Context, fn func(ctx context.Context) error) error {
	result := make(chan error, 1)
	if err := e.Post(ctx, func(loopCtx context.Context) {
		result <- fn(loopCtx)
	}); err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-e.closed:
		return fmt.Errorf("%w: %s", ErrEndpointClosed, e.name)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatch runs the handler for msg and always produces a response.
func (e *Endpoint) dispatch(ctx context.Context, msg Message) (resp Response) {
	e.logger.Debug("message received", "type", msg.Kind)

	e.mu.RLock()
	h, ok := e.handlers[msg.Kind]
	e.mu.RUnlock()
	if !ok {
		return Response{Status: StatusIgnored}
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("message handler panicked", "type", msg.Kind, "panic", r)
			resp = Response{Status: StatusError}
		}
	}()

	resp = h(ctx, msg)
	if resp.Status == "" {
		resp.Status = StatusReceived
	}
	return resp
}

// connected runs the connect hooks for p. It is called on the loop.
func (e *Endpoint) connected(p *Port) {
	e.mu.RLock()
	hooks := slices.Clone(e.connectHooks)
	e.mu.RUnlock()

	e.logger.Debug("port connected", "port", p.name)
	for _, fn := range hooks {
		fn(p)
	}
}

func (e *Endpoint) close() {
	e.closeOnce.Do(func() { close(e.closed) })
}
