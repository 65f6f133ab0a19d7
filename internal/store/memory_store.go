package store

import (
	"sort"
	"sync"

	"branchpulse/pkg/domain"
)

// MemoryStore keeps records in-process. Used by tests and secret-less local
// runs; mirrors GormStore semantics including listing order.
type MemoryStore struct {
	mu       sync.RWMutex
	admins   map[string]domain.Admin // key: admin ID
	emails   map[string]string       // email -> admin ID
	feedback map[string]domain.Feedback
	order    []string // feedback IDs in insertion order
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		admins:   make(map[string]domain.Admin),
		emails:   make(map[string]string),
		feedback: make(map[string]domain.Feedback),
	}
}

// SaveAdmin registers an admin.
func (m *MemoryStore) SaveAdmin(a domain.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admins[a.ID] = a
	m.emails[a.Email] = a.ID
	return nil
}

// HasAdminEmail checks if email exists.
func (m *MemoryStore) HasAdminEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.emails[email]
	return ok, nil
}

// GetAdminByEmail looks up an admin by email.
func (m *MemoryStore) GetAdminByEmail(email string) (domain.Admin, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.emails[email]; ok {
		a, exists := m.admins[id]
		return a, exists, nil
	}
	return domain.Admin{}, false, nil
}

// GetAdminByID returns an admin by ID.
func (m *MemoryStore) GetAdminByID(id string) (domain.Admin, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.admins[id]
	return a, ok, nil
}

// SaveFeedback stores a record and tracks insertion order.
func (m *MemoryStore) SaveFeedback(f domain.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.feedback[f.ID]; !exists {
		m.order = append(m.order, f.ID)
	}
	m.feedback[f.ID] = f
	return nil
}

// GetFeedback retrieves a record by ID.
func (m *MemoryStore) GetFeedback(id string) (domain.Feedback, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.feedback[id]
	return f, ok, nil
}

// ListFeedback returns all records newest first, matching GormStore's
// created_at DESC, id DESC ordering.
func (m *MemoryStore) ListFeedback() ([]domain.Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Feedback, 0, len(m.order))
	for _, id := range m.order {
		if f, ok := m.feedback[id]; ok {
			res = append(res, f)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return res[i].ID > res[j].ID
	})
	return res, nil
}

// FeedbackCount returns the number of stored records.
func (m *MemoryStore) FeedbackCount() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.feedback), nil
}
