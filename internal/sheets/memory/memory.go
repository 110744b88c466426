package memory

import (
	"context"
	"fmt"
	"sync"

	ports "feeledger/internal/sheets"
)

var _ ports.RowStore = (*Store)(nil)

// Store keeps the last written sheet in memory. It backs the "memory"
// export backend and the worker tests.
type Store struct {
	mu     sync.Mutex
	header []string
	rows   [][]string
	writes int
}

func New() *Store {
	return &Store{}
}

// NewWithRows seeds the store as if rows had been written under header.
func NewWithRows(header []string, rows [][]string) *Store {
	return &Store{header: clone([][]string{header})[0], rows: clone(rows)}
}

// WriteRows replaces the stored sheet and returns a synthetic reference.
func (s *Store) WriteRows(_ context.Context, header []string, rows [][]string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.header = append([]string(nil), header...)
	s.rows = clone(rows)
	s.writes++
	return fmt.Sprintf("mem:%d!A1:%d", s.writes, len(rows)+1), nil
}

// ReadRows returns a copy of the stored data rows.
func (s *Store) ReadRows(_ context.Context) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.rows), nil
}

// Header returns the header of the last write.
func (s *Store) Header() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.header...)
}

// Writes reports how many times WriteRows has been called.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func clone(in [][]string) [][]string {
	out := make([][]string, len(in))
	for i, row := range in {
		out[i] = append([]string(nil), row...)
	}
	return out
}
