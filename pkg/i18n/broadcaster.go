// Package i18n delivers language changes from whatever control owns them
// (a terminal command, a navbar toggle, an HTTP call) to interested sessions.
package i18n

import (
	"sync"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// Listener receives the new language.
type Listener func(domain.Language)

// Broadcaster fans a language change out to its subscribers.
// The zero value is ready to use.
type Broadcaster struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
	current   domain.Language
}

// NewBroadcaster creates a broadcaster whose current language is lang.
func NewBroadcaster(lang domain.Language) *Broadcaster {
	return &Broadcaster{current: lang}
}

// Subscribe registers fn and returns the function that removes it.
// Calling the returned function more than once is harmless.
func (b *Broadcaster) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listeners == nil {
		b.listeners = make(map[int]Listener)
	}
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Publish validates lang and delivers it to every subscriber.
// Publishing the current language again is a no-op.
func (b *Broadcaster) Publish(lang domain.Language) error {
	parsed, err := domain.ParseLanguage(string(lang))
	if err != nil {
		return err
	}

	b.mu.Lock()
	if parsed == b.current {
		b.mu.Unlock()
		return nil
	}
	b.current = parsed
	listeners := make([]Listener, 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(parsed)
	}
	return nil
}

// Current returns the last published language.
func (b *Broadcaster) Current() domain.Language {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.current == "" {
		return domain.DefaultLanguage
	}
	return b.current
}
