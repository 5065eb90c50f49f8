// Package observable is a small named-event registry shared by the map view,
// the geolocation provider and the locate controller.
package observable

import "sync"

// Event is delivered to every listener registered for its Type.
type Event struct {
	Type  string
	Value any
}

// Listener handles an Event.
type Listener func(Event)

// Key identifies one registration and is what Un takes back.
type Key struct {
	name string
	id   uint64
}

// Valid reports whether k came from On.
func (k Key) Valid() bool {
	return k.id != 0
}

type entry struct {
	id uint64
	fn Listener
}

// Registry keeps listeners by event name. The zero value is ready to use.
type Registry struct {
	mu        sync.RWMutex
	next      uint64
	listeners map[string][]entry
}

// On registers fn for events named name.
func (r *Registry) On(name string, fn Listener) Key {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.listeners == nil {
		r.listeners = make(map[string][]entry)
	}
	r.next++
	r.listeners[name] = append(r.listeners[name], entry{id: r.next, fn: fn})
	return Key{name: name, id: r.next}
}

// Un removes the registration behind k. Unknown or already removed keys are
// ignored, so callers may unsubscribe more than once.
func (r *Registry) Un(k Key) bool {
	if !k.Valid() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.listeners[k.name]
	for i, e := range list {
		if e.id == k.id {
			r.listeners[k.name] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Emit calls the listeners for name in registration order. Listeners may
// register or unregister while being called; the change applies from the
// next Emit.
func (r *Registry) Emit(name string, value any) {
	r.mu.RLock()
	list := append([]entry(nil), r.listeners[name]...)
	r.mu.RUnlock()

	ev := Event{Type: name, Value: value}
	for _, e := range list {
		e.fn(ev)
	}
}

// Count returns how many listeners are registered for name.
func (r *Registry) Count(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners[name])
}
