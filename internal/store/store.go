package store

import "branchpulse/pkg/domain"

// Store defines persistence operations for admins and feedback records.
// Feedback has no update or delete: records are immutable once saved.
type Store interface {
	// admins
	SaveAdmin(domain.Admin) error
	HasAdminEmail(email string) (bool, error)
	GetAdminByEmail(email string) (domain.Admin, bool, error)
	GetAdminByID(id string) (domain.Admin, bool, error)

	// feedback
	SaveFeedback(domain.Feedback) error
	GetFeedback(id string) (domain.Feedback, bool, error)
	ListFeedback() ([]domain.Feedback, error)
	FeedbackCount() (int, error)
}
