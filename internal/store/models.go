package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type AdminModel struct {
	ID           string    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (AdminModel) TableName() string { return "admins" }

type FeedbackModel struct {
	ID          string `gorm:"primaryKey"`
	Branch      string `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Phone       string `gorm:"not null"`
	Email       string
	VisitDate   string
	VisitTime   string
	Ratings     datatypes.JSON
	DelayBucket string
	Comment     string
	Attachment  string
	CreatedAt   time.Time `gorm:"not null;index"`
}

func (FeedbackModel) TableName() string { return "feedback" }
