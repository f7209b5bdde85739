package bridge

import (
	"context"
	"sync"
)

// Port is a long-lived connection to an endpoint. It carries no messages;
// its only event is the disconnect.
type Port struct {
	name     string
	receiver *Endpoint

	mu    sync.Mutex
	hooks []func()

	once sync.Once
	done chan struct{}
}

// Name returns the name the port was opened with.
func (p *Port) Name() string {
	return p.name
}

// OnDisconnect registers fn to run on the receiver's loop when the port is
// disconnected. Registering after the disconnect has no effect.
func (p *Port) OnDisconnect(fn func()) {
	p.mu.Lock()
	p.hooks = append(p.hooks, fn)
	p.mu.Unlock()
}

// Disconnect closes the port and schedules the disconnect hooks on the
// receiver's loop. Only the first call has an effect. When the receiver has
// already stopped the hooks do not run.
func (p *Port) Disconnect() {
	p.once.Do(func() {
		close(p.done)

		p.mu.Lock()
		hooks := p.hooks
		p.hooks = nil
		p.mu.Unlock()

		err := p.receiver.Post(context.Background(), func(context.Context) {
			p.receiver.logger.Debug("port disconnected", "port", p.name)
			for _, fn := range hooks {
				fn()
			}
		})
		if err != nil {
			p.receiver.logger.Debug("dropping disconnect of stopped endpoint", "port", p.name)
		}
	})
}

// Done is closed once the port is disconnected.
func (p *Port) Done() <-chan struct{} {
	return p.done
}
