package scraper

import (
	"context"
	"sync"
)

// MockSink records every submitted batch.
type MockSink struct {
	mu      sync.Mutex
	batches [][]ProductRecord
	failErr error
}

func (m *MockSink) UpsertBatch(_ context.Context, records []ProductRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failErr != nil {
		return 0, m.failErr
	}
	m.batches = append(m.batches, records)
	return int64(len(records)), nil
}

// all flattens the recorded batches in submission order
func (m *MockSink) all() []ProductRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []ProductRecord
	for _, batch := range m.batches {
		out = append(out, batch...)
	}
	return out
}
