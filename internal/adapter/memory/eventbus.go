package memory

import (
	"context"
	"sync"

	"github.com/alanyang/promptbox/internal/domain/event"
	porteventbus "github.com/alanyang/promptbox/internal/port/eventbus"
)

// EventBus is an in-process publish/subscribe bus. Handlers run on their
// own goroutines so a publisher holding a lock never deadlocks against a
// subscriber that re-enters the publishing component.
type EventBus struct {
	mu   sync.RWMutex
	subs map[event.Channel]map[*busSubscription]porteventbus.Handler
}

func NewEventBus() *EventBus {
	return &EventBus{
		subs: make(map[event.Channel]map[*busSubscription]porteventbus.Handler),
	}
}

func (eb *EventBus) Publish(ctx context.Context, e event.Event) error {
	ch := event.ChannelFor(e.Type)

	eb.mu.RLock()
	handlers := make([]porteventbus.Handler, 0, len(eb.subs[ch]))
	for _, h := range eb.subs[ch] {
		handlers = append(handlers, h)
	}
	eb.mu.RUnlock()

	for _, h := range handlers {
		handler := h
		go handler(context.WithoutCancel(ctx), e)
	}
	return nil
}

func (eb *EventBus) Subscribe(_ context.Context, ch event.Channel, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	sub := &busSubscription{bus: eb, channel: ch}

	eb.mu.Lock()
	if eb.subs[ch] == nil {
		eb.subs[ch] = make(map[*busSubscription]porteventbus.Handler)
	}
	eb.subs[ch][sub] = handler
	eb.mu.Unlock()

	return sub, nil
}

type busSubscription struct {
	bus     *EventBus
	channel event.Channel
}

func (s *busSubscription) Unsubscribe() {
	s.bus.mu.Lock()
	delete(s.bus.subs[s.channel], s)
	s.bus.mu.Unlock()
}
