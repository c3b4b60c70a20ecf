package llm

import (
	"sync"
)

// Switcher holds the active backend behind a single-writer/multiple-reader
// swap. Switching is transactional: the replacement client is fully built
// before it is installed, so a failed switch leaves the previous backend
// active and the system is never without a usable backend.
type Switcher struct {
	mu      sync.RWMutex
	cfg     Config
	active  Client
	factory func(Config) (Client, error)
}

func NewSwitcher(cfg Config) (*Switcher, error) {
	return newSwitcher(cfg, New)
}

func newSwitcher(cfg Config, factory func(Config) (Client, error)) (*Switcher, error) {
	client, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	return &Switcher{cfg: cfg, active: client, factory: factory}, nil
}

// Active returns the currently active backend.
func (s *Switcher) Active() Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Provider returns the active backend's provider name.
func (s *Switcher) Provider() string {
	return s.Active().Provider()
}

// Switch replaces the active backend. Switching to the already-active
// provider is a no-op. An unsupported provider name or missing credentials
// yield a *ConfigurationError and the active backend is unchanged.
func (s *Switcher) Switch(provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active.Provider() == provider {
		return nil
	}

	cfg := s.cfg
	cfg.Provider = provider
	client, err := s.factory(cfg)
	if err != nil {
		return err
	}

	s.cfg = cfg
	s.active = client
	return nil
}
