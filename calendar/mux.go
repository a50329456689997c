package calendar

import (
	"fmt"
	"sync"

	"github.com/guilherme-santos/syncstatus"
)

type Mux struct {
	mu        sync.Mutex
	providers map[string]syncstatus.Provider
}

func NewMux() *Mux {
	return &Mux{
		providers: make(map[string]syncstatus.Provider),
	}
}

func (m *Mux) Get(platform string) (syncstatus.Provider, error) {
	provider, ok := m.providers[platform]
	if !ok {
		return nil, fmt.Errorf("calendar %q is not implemented", platform)
	}
	return provider, nil
}

func (m *Mux) Register(platform string, provider syncstatus.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.providers[platform] = provider
}
