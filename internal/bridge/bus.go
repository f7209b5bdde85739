package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// inboxSize is the number of tasks an endpoint buffers before Post blocks.
const inboxSize = 64

// Bus routes messages between named endpoints.
type Bus struct {
	logger *slog.Logger

	mu        sync.RWMutex
	endpoints map[string]*Endpoint
}

// NewBus creates an empty Bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		logger:    logger,
		endpoints: make(map[string]*Endpoint),
	}
}

// Endpoint returns the endpoint called name, creating it on first use.
// The endpoint processes nothing until Run is called.
func (b *Bus) Endpoint(name string) *Endpoint {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e, ok := b.endpoints[name]; ok {
		return e
	}
	e := &Endpoint{
		name:     name,
		logger:   b.logger.With("endpoint", name),
		inbox:    make(chan task, inboxSize),
		closed:   make(chan struct{}),
		handlers: make(map[Kind]Handler),
	}
	b.endpoints[name] = e
	return e
}

func (b *Bus) lookup(name string) (*Endpoint, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.endpoints[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, name)
	}
	return e, nil
}

// Send delivers msg to the endpoint called to and waits for its response.
// The handler runs on the receiver's loop with the receiver's context, so
// canceling ctx stops the wait but not the handler.
func (b *Bus) Send(ctx context.Context, to string, msg Message) (Response, error) {
	e, err := b.lookup(to)
	if err != nil {
		return Response{}, err
	}

	reply := make(chan Response, 1)
	if err := e.Post(ctx, func(loopCtx context.Context) {
		reply <- e.dispatch(loopCtx, msg)
	}); err != nil {
		return Response{}, err
	}

	select {
	case resp := <-reply:
		return resp, nil
	case <-e.closed:
		return Response{}, fmt.Errorf("%w: %s", ErrEndpointClosed, to)
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Connect opens a port called name to the endpoint called to. The
// receiver's OnConnect hooks run on its loop before Connect returns.
func (b *Bus) Connect(ctx context.Context, to, name string) (*Port, error) {
	e, err := b.lookup(to)
	if err != nil {
		return nil, err
	}

	p := &Port{
		name:     name,
		receiver: e,
		done:     make(chan struct{}),
	}
	if err := e.Call(ctx, func(context.Context) error {
		e.connected(p)
		return nil
	}); err != nil {
		return nil, err
	}
	return p, nil
}
