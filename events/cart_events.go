// Package events delivers cart change notifications synchronously to
// registered observers. Observers must be idempotent: a publish that happens
// to re-enter (an observer mutating the cart again) simply produces another
// consistent notification rather than being suppressed by a guard flag.
package events

import (
	"sync"

	"github.com/walthampeppinosdosa/peppinos-api/models"
)

// CartObserver receives the owner's full cart state after every mutation.
type CartObserver interface {
	CartChanged(ownerID string, cart models.Cart)
}

// CartObserverFunc adapts a plain function to the interface.
type CartObserverFunc func(ownerID string, cart models.Cart)

func (f CartObserverFunc) CartChanged(ownerID string, cart models.Cart) {
	f(ownerID, cart)
}

type CartPublisher struct {
	mu        sync.RWMutex
	observers []CartObserver
}

func NewCartPublisher() *CartPublisher {
	return &CartPublisher{}
}

func (p *CartPublisher) Subscribe(o CartObserver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, o)
}

// Publish invokes every observer in registration order on the caller's
// goroutine. The observer list is copied under the read lock so an observer
// may subscribe or publish again without deadlocking.
func (p *CartPublisher) Publish(ownerID string, cart models.Cart) {
	p.mu.RLock()
	observers := make([]CartObserver, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, o := range observers {
		o.CartChanged(ownerID, cart)
	}
}
