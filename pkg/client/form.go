package client

import (
	"errors"
	"fmt"
	"strings"
)

// FormState is the lifecycle of a single form fill-out.
type FormState string

const (
	StateEditing    FormState = "editing"
	StateSubmitting FormState = "submitting"
	StateSubmitted  FormState = "submitted" // terminal
)

var (
	ErrNotEditing       = errors.New("form is not editable")
	ErrAlreadySubmitted = errors.New("form already submitted")
	ErrMissingRequired  = errors.New("required fields are missing")
)

// submitFunc performs the actual network submission. It is a field so tests
// can exercise the state machine without a server.
type submitFunc func(Submission) (SubmitResult, error)

// FormSession drives one submission through editing, an in-flight request,
// and the terminal submitted state. A failed submission returns the form to
// editing with the server's error kept verbatim for display.
type FormSession struct {
	state   FormState
	fields  Submission
	result  SubmitResult
	lastErr string
	submit  submitFunc
}

// NewFormSession starts a session in the editing state.
func NewFormSession(c *Client) *FormSession {
	return &FormSession{state: StateEditing, submit: c.Submit}
}

// State returns the current lifecycle state.
func (f *FormSession) State() FormState {
	return f.state
}

// LastError returns the message from the most recent failed submission,
// empty after a success or before any attempt.
func (f *FormSession) LastError() string {
	return f.lastErr
}

// Result returns the server response after a successful submission.
func (f *FormSession) Result() SubmitResult {
	return f.result
}

// Fields returns a copy of the current form values.
func (f *FormSession) Fields() Submission {
	return f.fields
}

// SetFields replaces the form values. Only allowed while editing.
func (f *FormSession) SetFields(sub Submission) error {
	if f.state != StateEditing {
		return ErrNotEditing
	}
	attachment := f.fields.Attachment
	f.fields = sub
	if sub.Attachment == nil {
		f.fields.Attachment = attachment
	}
	return nil
}

// SelectAttachment attaches a file, replacing any prior selection.
func (f *FormSession) SelectAttachment(filename string, content []byte) error {
	if f.state != StateEditing {
		return ErrNotEditing
	}
	f.fields.Attachment = &Attachment{Filename: filename, Content: content}
	return nil
}

// ClearAttachment removes the current selection.
func (f *FormSession) ClearAttachment() error {
	if f.state != StateEditing {
		return ErrNotEditing
	}
	f.fields.Attachment = nil
	return nil
}

// MissingFields returns the required fields that are still blank, in a
// fixed order for inline display next to the inputs.
func (f *FormSession) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(f.fields.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(f.fields.Phone) == "" {
		missing = append(missing, "phone")
	}
	return missing
}

// Submit sends the form. Blank required fields block the attempt before any
// network call and the session stays editable. On success the session
// reaches the terminal submitted state and further submissions are
// rejected. On failure the session returns to editing with the field values
// intact.
func (f *FormSession) Submit() error {
	switch f.state {
	case StateSubmitted:
		return ErrAlreadySubmitted
	case StateSubmitting:
		return ErrNotEditing
	}

	if missing := f.MissingFields(); len(missing) > 0 {
		err := fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
		f.lastErr = err.Error()
		return err
	}

	f.state = StateSubmitting
	result, err := f.submit(f.fields)
	if err != nil {
		f.state = StateEditing
		f.lastErr = err.Error()
		return err
	}
	f.state = StateSubmitted
	f.result = result
	f.lastErr = ""
	return nil
}
