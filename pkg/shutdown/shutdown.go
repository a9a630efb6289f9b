package shutdown

import (
	"context"
	"sync"

	"github.com/hundredx/go100x/pkg/logger"
)

// Handler releases one resource. It must return once ctx is done.
type Handler func(ctx context.Context)

// Manager runs registered handlers concurrently on shutdown.
type Manager struct {
	callbacks []Handler
	mu        sync.Mutex
}

func NewManager() *Manager {
	return &Manager{}
}

// OnShutdown registers handler.
func (m *Manager) OnShutdown(handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, handler)
}

// Shutdown runs every handler and waits for them or for ctx, whichever
// comes first. It reports whether all handlers finished.
func (m *Manager) Shutdown(ctx context.Context) bool {
	m.mu.Lock()
	callbacks := m.callbacks
	m.mu.Unlock()

	if len(callbacks) == 0 {
		return true
	}
	logger.Infof("shutting down %d components", len(callbacks))

	var wg sync.WaitGroup
	wg.Add(len(callbacks))
	for _, cb := range callbacks {
		go func(handler Handler) {
			defer wg.Done()
			handler(ctx)
		}(cb)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		logger.Warnf("shutdown timed out: %v", ctx.Err())
		return false
	}
}
