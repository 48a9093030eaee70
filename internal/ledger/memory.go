package ledger

import (
	"maps"
	"slices"
	"sync"
)

// MemoryLedger implements Ledger with in-memory maps (not persistent).
type MemoryLedger struct {
	mu     sync.RWMutex
	phases map[string]map[int]ChunkResult
}

func NewMemory() *MemoryLedger {
	return &MemoryLedger{phases: make(map[string]map[int]ChunkResult)}
}

func (m *MemoryLedger) Record(r ChunkResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	chunks, ok := m.phases[r.Phase]
	if !ok {
		chunks = make(map[int]ChunkResult)
		m.phases[r.Phase] = chunks
	}
	chunks[r.Index] = r

	return nil
}

func (m *MemoryLedger) Results(phase string) ([]ChunkResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chunks := m.phases[phase]
	results := make([]ChunkResult, 0, len(chunks))
	for _, i := range slices.Sorted(maps.Keys(chunks)) {
		results = append(results, chunks[i])
	}

	return results, nil
}

// Close is a no-op for the memory ledger
func (m *MemoryLedger) Close() error {
	return nil
}
