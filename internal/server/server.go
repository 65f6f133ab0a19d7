package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"branchpulse/internal/app"
	"branchpulse/internal/session"
	"branchpulse/internal/util"
	"branchpulse/pkg/domain"
)

// Guard rejection messages. The admin client keys off "Invalid token." to
// clear its cached token, so the strings are part of the API.
const (
	msgAccessDenied = "Access denied. No token provided."
	msgInvalidToken = "Invalid token."
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App               *app.App
	UploadsDir        string // serves /uploads/* when set (disk backend)
	MaxUploadBytes    int64
	AllowedExtensions []string
}

// Server exposes the feedback service HTTP endpoints.
type Server struct {
	app            *app.App
	mux            *http.ServeMux
	maxUploadBytes int64
	allowedExts    []string
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:            cfg.App,
		mux:            http.NewServeMux(),
		maxUploadBytes: cfg.MaxUploadBytes,
		allowedExts:    cfg.AllowedExtensions,
	}
	s.routes(cfg.UploadsDir)
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return s.mux
}

func (s *Server) routes(uploadsDir string) {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// public
	s.mux.HandleFunc("/api/form-config", s.handleFormConfig)
	s.mux.HandleFunc("/api/feedback", s.handleFeedback)

	// admin
	s.mux.HandleFunc("/api/admin/register", s.handleRegister)
	s.mux.HandleFunc("/api/admin/login", s.handleLogin)
	s.mux.Handle("/api/admin/logout", s.authenticated(s.handleLogout))

	if uploadsDir != "" {
		fileServer := http.FileServer(http.Dir(uploadsDir))
		s.mux.Handle("/uploads/", http.StripPrefix("/uploads/", fileServer))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFormConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.app.FormConfiguration())
}

// handleFeedback serves the public write (POST) and the guarded read (GET).
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleSubmit(w, r)
	case http.MethodGet:
		s.authenticated(s.handleList).ServeHTTP(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}

	input, cleanup, err := s.parseSubmission(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	feedback, err := s.app.SubmitFeedback(r.Context(), input)
	if err != nil {
		if app.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		util.LoggerFromContext(r.Context()).Error("submission failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Form submitted successfully!",
		"id":      feedback.ID,
	})
}

// parseSubmission accepts multipart (with optional file part "attachment")
// and urlencoded bodies.
func (s *Server) parseSubmission(r *http.Request) (app.SubmissionInput, func(), error) {
	cleanup := func() {}
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if contentType == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return app.SubmissionInput{}, cleanup, errors.New("invalid form data")
		}
	} else if err := r.ParseForm(); err != nil {
		return app.SubmissionInput{}, cleanup, errors.New("invalid form data")
	}

	input := app.SubmissionInput{
		Branch:      r.FormValue("branch"),
		Name:        r.FormValue("name"),
		Phone:       r.FormValue("phone"),
		Email:       r.FormValue("email"),
		VisitDate:   r.FormValue("date"),
		VisitTime:   r.FormValue("time"),
		DelayBucket: domain.DelayBucket(r.FormValue("time_to_receive")),
		Comment:     r.FormValue("comment"),
	}
	for _, question := range domain.RatingQuestions {
		if v := r.FormValue(question); v != "" {
			if input.Ratings == nil {
				input.Ratings = make(map[string]domain.Rating)
			}
			input.Ratings[question] = domain.Rating(v)
		}
	}

	if contentType == "multipart/form-data" {
		file, header, err := r.FormFile("attachment")
		switch {
		case err == nil:
			if !s.isExtensionAllowed(header.Filename) {
				file.Close()
				return app.SubmissionInput{}, cleanup, errors.New("unsupported file type")
			}
			cleanup = func() { file.Close() }
			input.Attachment = &app.AttachmentInput{
				Filename:    header.Filename,
				Size:        header.Size,
				ContentType: header.Header.Get("Content-Type"),
				Reader:      file,
			}
		case errors.Is(err, http.ErrMissingFile):
			// attachment is optional
		default:
			return app.SubmissionInput{}, cleanup, errors.New("invalid attachment")
		}
	}
	return input, cleanup, nil
}

func (s *Server) isExtensionAllowed(filename string) bool {
	if len(s.allowedExts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range s.allowedExts {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if !strings.HasPrefix(allowed, ".") {
			allowed = "." + allowed
		}
		if ext == allowed {
			return true
		}
	}
	return false
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, _ session.Claims) {
	list, err := s.app.ListFeedback(r.Context())
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("list feedback failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": list,
		"count": len(list),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req credentialsRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if _, err := s.app.RegisterAdmin(r.Context(), req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, app.ErrRegistrationDisabled):
			writeError(w, http.StatusForbidden, err.Error())
		case app.IsValidationError(err) || errors.Is(err, app.ErrAdminExists):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			util.LoggerFromContext(r.Context()).Error("registration failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Admin registered successfully!"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req credentialsRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	token, err := s.app.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		util.LoggerFromContext(r.Context()).Error("login failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful!",
		"token":   token,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ session.Claims) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, _ := bearerToken(r)
	if err := s.app.Logout(token); err != nil {
		util.LoggerFromContext(r.Context()).Error("logout failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// guard
type authHandler func(http.ResponseWriter, *http.Request, session.Claims)

// authenticated verifies the bearer token and attaches the decoded claims.
// It allows or denies continuation and never mutates state.
func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, msgAccessDenied)
			return
		}
		claims, err := s.app.VerifyToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, msgInvalidToken)
			return
		}
		next(w, r, claims)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader == "" {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
