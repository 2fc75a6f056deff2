package storage

import (
	"sync"

	"github.com/lehigh-university-libraries/mrzscan/internal/verify"
)

// DefaultCapacity bounds the number of reports kept in memory.
const DefaultCapacity = 256

// ReportStore keeps the most recent verification reports by ID. The
// oldest report is evicted once capacity is reached.
type ReportStore struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	reports  map[string]*verify.Report
}

func New(capacity int) *ReportStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ReportStore{
		capacity: capacity,
		reports:  make(map[string]*verify.Report),
	}
}

func (s *ReportStore) Get(id string) (*verify.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, exists := s.reports[id]
	return report, exists
}

func (s *ReportStore) Set(id string, report *verify.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.reports[id]; !exists {
		s.order = append(s.order, id)
	}
	s.reports[id] = report
	for len(s.order) > s.capacity {
		delete(s.reports, s.order[0])
		s.order = s.order[1:]
	}
}

// IDs returns stored IDs, newest first.
func (s *ReportStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.order))
	for i, id := range s.order {
		ids[len(s.order)-1-i] = id
	}
	return ids
}

// Delete removes a report and reports whether it was stored.
func (s *ReportStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.reports[id]; !exists {
		return false
	}
	delete(s.reports, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}
