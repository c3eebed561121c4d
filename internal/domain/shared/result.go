package shared

import (
	"errors"
	"strings"
)

// MessageType classifies a result message
type MessageType string

const (
	MessageError   MessageType = "error"
	MessageWarning MessageType = "warning"
	MessageInfo    MessageType = "info"
	MessageSuccess MessageType = "success"
)

// Result codes attached to error messages
const (
	CodeInvalidParameters = "400.1"
	CodeValidation        = "400.2"
	CodeNotFound          = "404.1"
	CodeApplicationError  = "500.1"
)

// Message is a single note attached to an operation result
type Message struct {
	Type     MessageType `json:"type"`
	Text     string      `json:"text"`
	Property string      `json:"property,omitempty"`
	Code     string      `json:"code,omitempty"`
	Err      error       `json:"-"`
}

func (m Message) IsError() bool {
	return m.Type == MessageError
}

func (m Message) String() string {
	var sb strings.Builder
	sb.WriteString(string(m.Type))
	if m.Code != "" {
		sb.WriteString("[" + m.Code + "]")
	}
	sb.WriteString(": ")
	sb.WriteString(m.Text)
	if m.Property != "" {
		sb.WriteString(" (" + m.Property + ")")
	}
	return sb.String()
}

func ErrorMessage(text, property, code string) Message {
	return Message{Type: MessageError, Text: text, Property: property, Code: code}
}

func WarningMessage(text, property string) Message {
	return Message{Type: MessageWarning, Text: text, Property: property}
}

func InfoMessage(text string) Message {
	return Message{Type: MessageInfo, Text: text}
}

func SuccessMessage(text string) Message {
	return Message{Type: MessageSuccess, Text: text}
}

func NotFoundMessage(text string) Message {
	return Message{Type: MessageError, Text: text, Code: CodeNotFound}
}

func InvalidParametersMessage(text, property string) Message {
	return Message{Type: MessageError, Text: text, Property: property, Code: CodeInvalidParameters}
}

func ValidationMessage(text, property string) Message {
	return Message{Type: MessageError, Text: text, Property: property, Code: CodeValidation}
}

// ApplicationErrorMessage wraps an unexpected error. An empty text falls back to err.Error().
func ApplicationErrorMessage(err error, text string) Message {
	if text == "" && err != nil {
		text = err.Error()
	}
	return Message{Type: MessageError, Text: text, Code: CodeApplicationError, Err: err}
}

// Result collects the outcome of an operation. It starts successful and
// turns into a failure as soon as an error message is added.
type Result struct {
	failed   bool
	messages []Message
}

// Success returns an empty successful result
func Success() Result {
	return Result{}
}

// Failure returns a failed result with a plain error message
func Failure(text string) Result {
	var r Result
	r.AddMessage(ErrorMessage(text, "", ""))
	return r
}

func NotFound(text string) Result {
	var r Result
	r.AddMessage(NotFoundMessage(text))
	return r
}

func InvalidParameters(text, property string) Result {
	var r Result
	r.AddMessage(InvalidParametersMessage(text, property))
	return r
}

func ValidationError(text, property string) Result {
	var r Result
	r.AddMessage(ValidationMessage(text, property))
	return r
}

func ApplicationError(err error, text string) Result {
	var r Result
	r.AddMessage(ApplicationErrorMessage(err, text))
	return r
}

// Succeeded reports whether no error message has been added
func (r Result) Succeeded() bool {
	return !r.failed
}

// Messages returns a copy of the attached messages
func (r Result) Messages() []Message {
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// AddMessage appends a message and flips the result to failure on errors
func (r *Result) AddMessage(m Message) {
	if m.IsError() {
		r.failed = true
	}
	r.messages = append(r.messages, m)
}

// AddError appends a plain error message
func (r *Result) AddError(text string) {
	r.AddMessage(ErrorMessage(text, "", ""))
}

// Join merges other into r: success only if both succeeded
func (r *Result) Join(other Result) *Result {
	r.failed = r.failed || other.failed
	r.messages = append(r.messages, other.messages...)
	return r
}

// Errors returns only the error messages
func (r Result) Errors() []Message {
	var errs []Message
	for _, m := range r.messages {
		if m.IsError() {
			errs = append(errs, m)
		}
	}
	return errs
}

// FirstError returns the first error message, if any
func (r Result) FirstError() (Message, bool) {
	for _, m := range r.messages {
		if m.IsError() {
			return m, true
		}
	}
	return Message{}, false
}

// HasCode reports whether any message carries the given code
func (r Result) HasCode(code string) bool {
	for _, m := range r.messages {
		if m.Code == code {
			return true
		}
	}
	return false
}

func (r Result) String() string {
	state := "success"
	if r.failed {
		state = "failure"
	}
	if len(r.messages) == 0 {
		return state
	}
	parts := make([]string, len(r.messages))
	for i, m := range r.messages {
		parts[i] = m.String()
	}
	return state + " {" + strings.Join(parts, "; ") + "}"
}

// ValueResult is a Result carrying a value on success
type ValueResult[T any] struct {
	Result
	Value T
}

// Ok wraps a value in a successful result
func Ok[T any](value T) ValueResult[T] {
	return ValueResult[T]{Value: value}
}

// Fail carries the messages of a failed result with a zero value
func Fail[T any](r Result) ValueResult[T] {
	return ValueResult[T]{Result: r}
}

// ResultFromError turns an error returned by the domain into result messages.
// Domain errors become expected failures while anything else is reported as
// an application error.
func ResultFromError(err error) Result {
	if err == nil {
		return Success()
	}
	var de *DomainError
	if !errors.As(err, &de) {
		return ApplicationError(err, "")
	}
	switch {
	case de.Code == ErrNotFound.Code || strings.HasSuffix(de.Code, "_NOT_FOUND"):
		return NotFound(de.Message)
	case de.Code == ErrInvalidInput.Code || strings.HasPrefix(de.Code, "INVALID_") && de.Code != ErrInvalidState.Code:
		return InvalidParameters(de.Message, propertyForCode(de.Code))
	default:
		var r Result
		r.AddMessage(ErrorMessage(de.Message, "", CodeValidation))
		return r
	}
}

func propertyForCode(code string) string {
	field := strings.TrimPrefix(code, "INVALID_")
	if field == code || field == "INPUT" {
		return ""
	}
	return strings.ToLower(field)
}
