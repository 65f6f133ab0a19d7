// Package client is the typed API surface used by the public feedback form
// and the admin view: submission, authentication, listing, and the local
// behaviors around them (form state machine, token persistence, in-memory
// filtering).
package client

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"branchpulse/pkg/domain"
)

// APIError represents a service error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client calls the feedback service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a feedback service client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Submission is the client-side form payload.
type Submission struct {
	Branch      string
	Name        string
	Phone       string
	Email       string
	VisitDate   string
	VisitTime   string
	Ratings     map[string]domain.Rating
	DelayBucket domain.DelayBucket
	Comment     string
	Attachment  *Attachment
}

// Attachment is a locally selected file.
type Attachment struct {
	Filename string
	Content  []byte
}

// SubmitResult is the submission endpoint's success body.
type SubmitResult struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// Submit posts the form as multipart, including the attachment when one is
// selected.
func (c *Client) Submit(sub Submission) (SubmitResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"branch":          sub.Branch,
		"name":            sub.Name,
		"phone":           sub.Phone,
		"email":           sub.Email,
		"date":            sub.VisitDate,
		"time":            sub.VisitTime,
		"time_to_receive": string(sub.DelayBucket),
		"comment":         sub.Comment,
	}
	for question, value := range sub.Ratings {
		fields[question] = string(value)
	}
	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := mw.WriteField(key, value); err != nil {
			return SubmitResult{}, err
		}
	}
	if sub.Attachment != nil {
		part, err := mw.CreateFormFile("attachment", sub.Attachment.Filename)
		if err != nil {
			return SubmitResult{}, err
		}
		if _, err := part.Write(sub.Attachment.Content); err != nil {
			return SubmitResult{}, err
		}
	}
	if err := mw.Close(); err != nil {
		return SubmitResult{}, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/feedback", &buf)
	if err != nil {
		return SubmitResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result SubmitResult
	if err := c.do(req, &result); err != nil {
		return SubmitResult{}, err
	}
	return result, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(email, password string) (string, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(http.MethodPost, "/api/admin/login", "", payload, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Logout revokes the token server-side.
func (c *Client) Logout(token string) error {
	return c.doJSON(http.MethodPost, "/api/admin/logout", token, nil, nil)
}

// List fetches all feedback records with the bearer token attached.
func (c *Client) List(token string) ([]domain.Feedback, error) {
	var resp struct {
		Items []domain.Feedback `json:"items"`
	}
	if err := c.doJSON(http.MethodGet, "/api/feedback", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// FormConfig fetches the survey shape (branches, questions, buckets) that
// drives form rendering.
func (c *Client) FormConfig() (FormConfig, error) {
	var cfg FormConfig
	if err := c.doJSON(http.MethodGet, "/api/form-config", "", nil, &cfg); err != nil {
		return FormConfig{}, err
	}
	return cfg, nil
}

// FormConfig mirrors the server's survey description.
type FormConfig struct {
	Branches        []string             `json:"branches"`
	RatingQuestions []string             `json:"ratingQuestions"`
	RatingValues    []domain.Rating      `json:"ratingValues"`
	DelayBuckets    []domain.DelayBucket `json:"delayBuckets"`
}

func (c *Client) doJSON(method, path, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&errBody); decodeErr == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(out)
}
