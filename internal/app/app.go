package app

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"branchpulse/internal/notify"
	"branchpulse/internal/session"
	"branchpulse/internal/storage"
	"branchpulse/internal/store"
	"branchpulse/internal/util"
	"branchpulse/pkg/auth"
	"branchpulse/pkg/domain"
)

// Config wires the application's dependencies explicitly; there is no
// package-level state.
type Config struct {
	Store             store.Store
	Sessions          *session.Sessions
	Blobs             storage.BlobStore // nil disables attachments
	Publisher         notify.Publisher  // nil disables submission events
	Branches          []string
	AllowRegistration bool
}

// App implements the submission, authentication and listing operations.
type App struct {
	store             store.Store
	sessions          *session.Sessions
	blobs             storage.BlobStore
	publisher         notify.Publisher
	branches          []string
	allowRegistration bool
}

// New constructs the application core.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("sessions are required")
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = notify.NoopPublisher{}
	}
	return &App{
		store:             cfg.Store,
		sessions:          cfg.Sessions,
		blobs:             cfg.Blobs,
		publisher:         publisher,
		branches:          cfg.Branches,
		allowRegistration: cfg.AllowRegistration,
	}, nil
}

// SubmissionInput is the validated boundary contract for new feedback.
type SubmissionInput struct {
	Branch      string
	Name        string
	Phone       string
	Email       string
	VisitDate   string
	VisitTime   string
	Ratings     map[string]domain.Rating
	DelayBucket domain.DelayBucket
	Comment     string
	Attachment  *AttachmentInput
}

// AttachmentInput carries the optional uploaded file.
type AttachmentInput struct {
	Filename    string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// SubmitFeedback validates the submission, stores the attachment first (a
// failed attachment write aborts the whole submission), persists the record
// and publishes a best-effort event.
func (a *App) SubmitFeedback(ctx context.Context, in SubmissionInput) (domain.Feedback, error) {
	if err := a.validateSubmission(in); err != nil {
		return domain.Feedback{}, err
	}

	var attachmentRef string
	if in.Attachment != nil {
		if a.blobs == nil {
			return domain.Feedback{}, fmt.Errorf("attachment storage not configured")
		}
		ref, err := a.blobs.Save(ctx, in.Attachment.Filename, in.Attachment.Reader, in.Attachment.Size, in.Attachment.ContentType)
		if err != nil {
			return domain.Feedback{}, fmt.Errorf("store attachment: %w", err)
		}
		attachmentRef = ref
	}

	feedback := domain.Feedback{
		ID:          util.NewID(),
		Branch:      strings.TrimSpace(in.Branch),
		Name:        strings.TrimSpace(in.Name),
		Phone:       strings.TrimSpace(in.Phone),
		Email:       strings.TrimSpace(in.Email),
		VisitDate:   strings.TrimSpace(in.VisitDate),
		VisitTime:   strings.TrimSpace(in.VisitTime),
		Ratings:     in.Ratings,
		DelayBucket: in.DelayBucket,
		Comment:     strings.TrimSpace(in.Comment),
		Attachment:  attachmentRef,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.store.SaveFeedback(feedback); err != nil {
		return domain.Feedback{}, fmt.Errorf("save feedback: %w", err)
	}

	event := notify.SubmissionEvent{
		FeedbackID: feedback.ID,
		Branch:     feedback.Branch,
		HasFile:    feedback.Attachment != "",
		CreatedAt:  feedback.CreatedAt,
	}
	if err := a.publisher.Publish(ctx, event); err != nil {
		util.LoggerFromContext(ctx).Warn("publish submission event failed", "feedback_id", feedback.ID, "err", err)
	}
	return feedback, nil
}

func (a *App) validateSubmission(in SubmissionInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(in.Phone) == "" {
		return ErrPhoneRequired
	}
	if len(a.branches) > 0 {
		branch := strings.TrimSpace(in.Branch)
		if branch == "" || !slices.Contains(a.branches, branch) {
			return ErrUnknownBranch
		}
	}
	for question, value := range in.Ratings {
		if !slices.Contains(domain.RatingQuestions, question) {
			return fmt.Errorf("%w: %s", ErrUnknownQuestion, question)
		}
		if !domain.ValidRating(value) {
			return fmt.Errorf("%w: %s", ErrInvalidRating, value)
		}
	}
	if !domain.ValidDelayBucket(in.DelayBucket) {
		return fmt.Errorf("%w: %s", ErrInvalidDelayBucket, in.DelayBucket)
	}
	return nil
}

// RegisterAdmin creates the one-time administrator account. Gated by
// configuration so deployments can switch it off after setup.
func (a *App) RegisterAdmin(ctx context.Context, email, password string) (domain.Admin, error) {
	if !a.allowRegistration {
		return domain.Admin{}, ErrRegistrationDisabled
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Admin{}, ErrEmailRequired
	}
	if password == "" {
		return domain.Admin{}, ErrPasswordRequired
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.Admin{}, err
	}
	exists, err := a.store.HasAdminEmail(email)
	if err != nil {
		return domain.Admin{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.Admin{}, ErrAdminExists
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.Admin{}, fmt.Errorf("hash password: %w", err)
	}
	admin := domain.Admin{
		ID:           util.NewID(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.store.SaveAdmin(admin); err != nil {
		return domain.Admin{}, fmt.Errorf("save admin: %w", err)
	}
	util.LoggerFromContext(ctx).Info("admin registered", "admin_id", admin.ID)
	return admin, nil
}

// Login validates credentials and issues a bearer token. Unknown email and
// wrong password return the identical ErrInvalidCredentials.
func (a *App) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	admin, ok, err := a.store.GetAdminByEmail(email)
	if err != nil {
		return "", fmt.Errorf("fetch admin: %w", err)
	}
	if !ok {
		return "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, admin.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	token, err := a.sessions.Issue(admin.ID, admin.Email)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	util.LoggerFromContext(ctx).Info("admin login", "admin_id", admin.ID)
	return token, nil
}

// Logout revokes the token when a revoker is configured; otherwise the
// token simply ages out.
func (a *App) Logout(token string) error {
	return a.sessions.Revoke(token)
}

// VerifyToken checks the bearer token and returns the decoded identity.
// A pure gate: it reads no state beyond the revocation denylist.
func (a *App) VerifyToken(token string) (session.Claims, error) {
	return a.sessions.Verify(token)
}

// ListFeedback returns every stored record, newest first.
func (a *App) ListFeedback(ctx context.Context) ([]domain.Feedback, error) {
	list, err := a.store.ListFeedback()
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return list, nil
}

// FormConfig describes the survey the form client should render.
type FormConfig struct {
	Branches        []string             `json:"branches"`
	RatingQuestions []string             `json:"ratingQuestions"`
	RatingValues    []domain.Rating      `json:"ratingValues"`
	DelayBuckets    []domain.DelayBucket `json:"delayBuckets"`
}

// FormConfiguration returns the deployment's survey shape.
func (a *App) FormConfiguration() FormConfig {
	return FormConfig{
		Branches:        a.branches,
		RatingQuestions: domain.RatingQuestions,
		RatingValues:    []domain.Rating{domain.RatingExcellent, domain.RatingVeryGood, domain.RatingPoor},
		DelayBuckets:    []domain.DelayBucket{domain.Delay10to15, domain.Delay15to20, domain.DelayOver20},
	}
}
