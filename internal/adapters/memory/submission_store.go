package memory

import (
	"context"
	"sync"
	"time"

	"github.com/samirrijal/ecobin/internal/core/domain"
	"github.com/samirrijal/ecobin/internal/core/ports"
)

// SubmissionStore implements ports.SubmissionRepository in memory.
type SubmissionStore struct {
	mu       sync.Mutex
	bins     map[string]domain.StoredBinSubmission
	contacts map[string]domain.StoredContactMessage
}

// NewSubmissionStore creates an empty SubmissionStore.
func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{
		bins:     make(map[string]domain.StoredBinSubmission),
		contacts: make(map[string]domain.StoredContactMessage),
	}
}

func (s *SubmissionStore) CreateBinSubmission(ctx context.Context, sub *domain.StoredBinSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bins[sub.ID] = *sub
	return nil
}

func (s *SubmissionStore) GetBinSubmission(ctx context.Context, id string) (*domain.StoredBinSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.bins[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &sub, nil
}

func (s *SubmissionStore) UpdateBinSubmissionStatus(ctx context.Context, id string, status domain.SubmissionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.bins[id]
	if !ok {
		return ports.ErrNotFound
	}
	sub.Status = status
	sub.UpdatedAt = time.Now().UTC()
	s.bins[id] = sub
	return nil
}

func (s *SubmissionStore) CreateContactMessage(ctx context.Context, msg *domain.StoredContactMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[msg.ID] = *msg
	return nil
}

// Counts returns the number of stored bin submissions and contact messages.
func (s *SubmissionStore) Counts() (bins, contacts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bins), len(s.contacts)
}
