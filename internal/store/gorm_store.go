package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"branchpulse/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&AdminModel{}, &FeedbackModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveAdmin inserts an admin. Admins are never updated by this system.
func (s *GormStore) SaveAdmin(a domain.Admin) error {
	model := adminToModel(a)
	return s.db.Create(&model).Error
}

// HasAdminEmail checks if email exists.
func (s *GormStore) HasAdminEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&AdminModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetAdminByEmail looks up an admin by email (case-sensitive exact match).
func (s *GormStore) GetAdminByEmail(email string) (domain.Admin, bool, error) {
	var model AdminModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Admin{}, false, nil
		}
		return domain.Admin{}, false, err
	}
	return adminFromModel(model), true, nil
}

// GetAdminByID returns an admin by ID.
func (s *GormStore) GetAdminByID(id string) (domain.Admin, bool, error) {
	var model AdminModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Admin{}, false, nil
		}
		return domain.Admin{}, false, err
	}
	return adminFromModel(model), true, nil
}

// SaveFeedback inserts a feedback record. No upsert: records are immutable.
func (s *GormStore) SaveFeedback(f domain.Feedback) error {
	model, err := feedbackToModel(f)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

// GetFeedback retrieves one record.
func (s *GormStore) GetFeedback(id string) (domain.Feedback, bool, error) {
	var model FeedbackModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Feedback{}, false, nil
		}
		return domain.Feedback{}, false, err
	}
	f, err := feedbackFromModel(model)
	if err != nil {
		return domain.Feedback{}, false, err
	}
	return f, true, nil
}

// ListFeedback returns all records, newest first. The id tiebreak keeps the
// order stable for records created within the same timestamp.
func (s *GormStore) ListFeedback() ([]domain.Feedback, error) {
	var models []FeedbackModel
	if err := s.db.Order("created_at DESC, id DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Feedback, 0, len(models))
	for _, m := range models {
		f, err := feedbackFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, f)
	}
	return res, nil
}

// FeedbackCount returns the number of stored records.
func (s *GormStore) FeedbackCount() (int, error) {
	var count int64
	if err := s.db.Model(&FeedbackModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func adminToModel(a domain.Admin) AdminModel {
	return AdminModel{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
	}
}

func adminFromModel(m AdminModel) domain.Admin {
	return domain.Admin{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

func feedbackToModel(f domain.Feedback) (FeedbackModel, error) {
	var ratings datatypes.JSON
	if len(f.Ratings) > 0 {
		data, err := json.Marshal(f.Ratings)
		if err != nil {
			return FeedbackModel{}, fmt.Errorf("marshal ratings: %w", err)
		}
		ratings = datatypes.JSON(data)
	}
	return FeedbackModel{
		ID:          f.ID,
		Branch:      f.Branch,
		Name:        f.Name,
		Phone:       f.Phone,
		Email:       f.Email,
		VisitDate:   f.VisitDate,
		VisitTime:   f.VisitTime,
		Ratings:     ratings,
		DelayBucket: string(f.DelayBucket),
		Comment:     f.Comment,
		Attachment:  f.Attachment,
		CreatedAt:   f.CreatedAt,
	}, nil
}

func feedbackFromModel(m FeedbackModel) (domain.Feedback, error) {
	var ratings map[string]domain.Rating
	if len(m.Ratings) > 0 {
		if err := json.Unmarshal(m.Ratings, &ratings); err != nil {
			return domain.Feedback{}, fmt.Errorf("unmarshal ratings: %w", err)
		}
	}
	return domain.Feedback{
		ID:          m.ID,
		Branch:      m.Branch,
		Name:        m.Name,
		Phone:       m.Phone,
		Email:       m.Email,
		VisitDate:   m.VisitDate,
		VisitTime:   m.VisitTime,
		Ratings:     ratings,
		DelayBucket: domain.DelayBucket(m.DelayBucket),
		Comment:     m.Comment,
		Attachment:  m.Attachment,
		CreatedAt:   m.CreatedAt,
	}, nil
}
