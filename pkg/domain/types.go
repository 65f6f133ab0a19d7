package domain

import "time"

type Rating string

const (
	RatingExcellent Rating = "excellent"
	RatingVeryGood  Rating = "very_good"
	RatingPoor      Rating = "poor"
)

// ValidRating reports whether v is one of the enumerated rating values.
func ValidRating(v Rating) bool {
	switch v {
	case RatingExcellent, RatingVeryGood, RatingPoor:
		return true
	}
	return false
}

type DelayBucket string

const (
	Delay10to15 DelayBucket = "10-15"
	Delay15to20 DelayBucket = "15-20"
	DelayOver20 DelayBucket = "20+"
)

// ValidDelayBucket reports whether v is an enumerated wait-time range.
// The empty bucket is valid: the question is optional.
func ValidDelayBucket(v DelayBucket) bool {
	switch v {
	case "", Delay10to15, Delay15to20, DelayOver20:
		return true
	}
	return false
}

// RatingQuestions are the survey questions answered with a Rating value.
var RatingQuestions = []string{
	"cooking",
	"speed_of_service",
	"friendliness",
	"store_cleanliness",
}

// Admin is a credentialed identity permitted to read submitted feedback.
// Created once via registration and only read during login afterwards.
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Feedback is a single survey response. Records are immutable once stored:
// there are no update or delete operations anywhere in the system.
type Feedback struct {
	ID          string            `json:"id"`
	Branch      string            `json:"branch"`
	Name        string            `json:"name"`
	Phone       string            `json:"phone"`
	Email       string            `json:"email,omitempty"`
	VisitDate   string            `json:"visitDate,omitempty"`
	VisitTime   string            `json:"visitTime,omitempty"`
	Ratings     map[string]Rating `json:"ratings,omitempty"`
	DelayBucket DelayBucket       `json:"delayBucket,omitempty"`
	Comment     string            `json:"comment,omitempty"`
	// Attachment is a resolvable reference (/uploads/<name> or a presigned
	// URL), empty when the submission carried no file.
	Attachment string    `json:"attachment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
