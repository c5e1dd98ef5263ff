package util

import "sync"

// SignalHandler receives the emitting object plus any extra arguments.
type SignalHandler func(sender any, params ...any)

// Signals is a minimal in-process signal registry used to decouple model
// events (user created, alert sent) from their listeners.
type Signals struct {
	mu       sync.RWMutex
	handlers map[string][]SignalHandler
}

var sigOnce sync.Once
var sig *Signals

// Sig returns the process-wide signal registry.
func Sig() *Signals {
	sigOnce.Do(func() {
		sig = &Signals{handlers: make(map[string][]SignalHandler)}
	})
	return sig
}

func (s *Signals) Connect(name string, handler SignalHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[name] = append(s.handlers[name], handler)
}

func (s *Signals) Emit(name string, sender any, params ...any) {
	s.mu.RLock()
	handlers := append([]SignalHandler(nil), s.handlers[name]...)
	s.mu.RUnlock()
	for _, h := range handlers {
		h(sender, params...)
	}
}
