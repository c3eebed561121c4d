package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_StartsSuccessful(t *testing.T) {
	r := Success()
	assert.True(t, r.Succeeded())
	assert.Empty(t, r.Messages())
	assert.Equal(t, "success", r.String())
}

func TestResult_AddMessage(t *testing.T) {
	tests := []struct {
		name    string
		message Message
		success bool
	}{
		{"error flips to failure", ErrorMessage("boom", "", ""), false},
		{"warning keeps success", WarningMessage("careful", "qty"), true},
		{"info keeps success", InfoMessage("fyi"), true},
		{"success keeps success", SuccessMessage("done"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Success()
			r.AddMessage(tt.message)
			assert.Equal(t, tt.success, r.Succeeded())
			assert.Len(t, r.Messages(), 1)
		})
	}
}

func TestResult_Factories(t *testing.T) {
	assert.True(t, NotFound("x").HasCode(CodeNotFound))
	assert.True(t, InvalidParameters("x", "p").HasCode(CodeInvalidParameters))
	assert.True(t, ValidationError("x", "").HasCode(CodeValidation))

	appErr := ApplicationError(errors.New("db gone"), "")
	require.False(t, appErr.Succeeded())
	msg, ok := appErr.FirstError()
	require.True(t, ok)
	assert.Equal(t, CodeApplicationError, msg.Code)
	assert.Equal(t, "db gone", msg.Text)

	f := Failure("nope")
	assert.False(t, f.Succeeded())
	assert.Len(t, f.Errors(), 1)
}

func TestResult_Join(t *testing.T) {
	t.Run("success joined with failure fails", func(t *testing.T) {
		r := Success()
		r.AddMessage(InfoMessage("a"))
		r.Join(NotFound("store not found"))

		assert.False(t, r.Succeeded())
		assert.Len(t, r.Messages(), 2)
	})

	t.Run("two successes stay successful", func(t *testing.T) {
		r := Success()
		other := Success()
		other.AddMessage(SuccessMessage("saved"))
		r.Join(other)

		assert.True(t, r.Succeeded())
		assert.Len(t, r.Messages(), 1)
	})

	t.Run("failure stays failed", func(t *testing.T) {
		r := Failure("first")
		r.Join(Success())
		assert.False(t, r.Succeeded())
	})
}

func TestResult_MessagesIsACopy(t *testing.T) {
	r := Failure("x")
	msgs := r.Messages()
	msgs[0].Text = "changed"
	assert.Equal(t, "x", r.Messages()[0].Text)
}

func TestValueResult(t *testing.T) {
	ok := Ok(42)
	assert.True(t, ok.Succeeded())
	assert.Equal(t, 42, ok.Value)

	failed := Fail[int](NotFound("missing"))
	assert.False(t, failed.Succeeded())
	assert.Zero(t, failed.Value)
}

func TestResultFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     string
		property string
	}{
		{"not found sentinel", ErrNotFound, CodeNotFound, ""},
		{"suffix not found", NewDomainError("ITEM_NOT_FOUND", "item"), CodeNotFound, ""},
		{"invalid quantity", NewDomainError("INVALID_QUANTITY", "qty"), CodeInvalidParameters, "quantity"},
		{"invalid input", ErrInvalidInput, CodeInvalidParameters, ""},
		{"invalid state is a rule violation", NewDomainError("INVALID_STATE", "closed"), CodeValidation, ""},
		{"other domain error", NewDomainError("PRODUCT_WITHOUT_PRICE", "no price"), CodeValidation, ""},
		{"wrapped domain error", fmt.Errorf("ctx: %w", NewDomainError("INVALID_STATUS", "bad")), CodeInvalidParameters, "status"},
		{"plain error", errors.New("io"), CodeApplicationError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ResultFromError(tt.err)
			require.False(t, r.Succeeded())
			msg, _ := r.FirstError()
			assert.Equal(t, tt.code, msg.Code)
			assert.Equal(t, tt.property, msg.Property)
		})
	}

	assert.True(t, ResultFromError(nil).Succeeded())
}

func TestConcurrencyError(t *testing.T) {
	cause := errors.New("0 rows affected")
	err := fmt.Errorf("save: %w", NewConcurrencyError("SalesOrder", "abc", 3, cause))

	assert.True(t, IsConcurrencyError(err))
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "expected version 3")
	assert.False(t, IsConcurrencyError(errors.New("other")))
}

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewDomainError("NOT_FOUND", "sales order not found")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrInvalidState)
}
