package repo

import (
	"context"
	"sync"

	"github.com/terra-tattva/storefront/internal/storefront/model"
)

// MemorySlotRepository keeps slots in process memory. Content is lost on restart.
type MemorySlotRepository struct {
	mu    sync.RWMutex
	slots map[string]map[string][]byte
}

func NewMemorySlotRepository() *MemorySlotRepository {
	return &MemorySlotRepository{slots: make(map[string]map[string][]byte)}
}

func (m *MemorySlotRepository) Load(_ context.Context, session, slot string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.slots[session][slot]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (m *MemorySlotRepository) Save(_ context.Context, session, slot string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[session]
	if !ok {
		s = make(map[string][]byte)
		m.slots[session] = s
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	s[slot] = buf
	return nil
}

func (m *MemorySlotRepository) Clear(_ context.Context, session string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.slots, session)
	return nil
}

var _ model.SlotRepository = (*MemorySlotRepository)(nil)
