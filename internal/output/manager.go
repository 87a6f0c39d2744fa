package output

import (
	"errors"
	"fmt"
	"sync"
)

// Sink defines a destination for check results and lifecycle events.
type Sink interface {
	Write(v any) error
	Close() error
}

// Manager fans writes out to multiple sinks. It is safe for concurrent use;
// WriteAll keeps one configuration's records contiguous in every sink.
type Manager struct {
	mu    sync.Mutex
	sinks []Sink
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) AddSink(s Sink) error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	if s == nil {
		return fmt.Errorf("sink must not be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, s)
	return nil
}

func (m *Manager) Write(v any) error {
	return m.WriteAll(v)
}

// WriteAll writes every value to every sink without interleaving with other
// writers.
func (m *Manager) WriteAll(vs ...any) error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, v := range vs {
		for _, s := range m.sinks {
			if err := s.Write(v); err != nil {
				errs = append(errs, fmt.Errorf("write %T: %w", s, err))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors writing to sinks: %w", errors.Join(errs...))
	}
	return nil
}

func (m *Manager) Close() error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %T: %w", s, err))
		}
	}
	m.sinks = nil
	if len(errs) > 0 {
		return fmt.Errorf("errors closing sinks: %w", errors.Join(errs...))
	}
	return nil
}
