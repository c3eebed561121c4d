package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/hexasamples/backend/internal/infrastructure/logger"
	"github.com/hexasamples/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestFormatValidationErrors(t *testing.T) {
	type addItem struct {
		ProductID string `json:"product_id" binding:"required,uuid"`
		Quantity  int    `json:"quantity" binding:"required,gt=0"`
	}

	SetupValidator()

	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		c.Set(logger.RequestIDKey, "req-1")
		var req addItem
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	t.Run("lists every rejected field by json name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"product_id": "nope", "quantity": -1}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		assert.Equal(t, "req-1", resp.Error.RequestID)
		require.Len(t, resp.Error.Details, 2)
		assert.Equal(t, dto.ValidationDetail{Field: "product_id", Message: "Invalid UUID format"}, resp.Error.Details[0])
		assert.Equal(t, dto.ValidationDetail{Field: "quantity", Message: "Must be greater than 0"}, resp.Error.Details[1])
	})

	t.Run("passes valid input", func(t *testing.T) {
		body := `{"product_id": "7f3c2f1e-8a4b-4c1d-9e2f-0a1b2c3d4e5f", "quantity": 2}`
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non validator error has no details", func(t *testing.T) {
		resp := FormatValidationErrors(assert.AnError, "")
		assert.Empty(t, resp.Error.Details)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type sample struct {
		Required string `validate:"required"`
		Min      string `validate:"min=5"`
		Max      string `validate:"max=3"`
		UUID     string `validate:"uuid"`
		OneOf    string `validate:"oneof=asc desc"`
		GT       int    `validate:"gt=0"`
		GTE      int    `validate:"gte=10"`
		MinNum   int    `validate:"min=1"`
	}

	err := validator.New().Struct(sample{
		Min:   "ab",
		Max:   "toolong",
		UUID:  "invalid",
		OneOf: "up",
	})
	require.Error(t, err)

	got := map[string]string{}
	for _, e := range err.(validator.ValidationErrors) {
		got[e.Field()] = getValidationMessage(e)
	}

	assert.Equal(t, "This field is required", got["Required"])
	assert.Equal(t, "Must be at least 5 characters", got["Min"])
	assert.Equal(t, "Must be at most 3 characters", got["Max"])
	assert.Equal(t, "Invalid UUID format", got["UUID"])
	assert.Equal(t, "Must be one of: asc desc", got["OneOf"])
	assert.Equal(t, "Must be greater than 0", got["GT"])
	assert.Equal(t, "Must be greater than or equal to 10", got["GTE"])
	assert.Equal(t, "Must be at least 1", got["MinNum"])
}

func TestDigitsValidation(t *testing.T) {
	SetupValidator()
	v := binding.Validator.Engine().(*validator.Validate)

	type registration struct {
		CNPJ string `json:"cnpj" binding:"digits=14"`
		CPF  string `json:"cpf" binding:"digits=11"`
	}

	tests := []struct {
		name   string
		in     registration
		failed []string
	}{
		{name: "bare digits", in: registration{CNPJ: "11222333000181", CPF: "52998224725"}},
		{name: "formatted", in: registration{CNPJ: "11.222.333/0001-81", CPF: "529.982.247-25"}},
		{name: "too short", in: registration{CNPJ: "1122233300018", CPF: "52998224725"}, failed: []string{"cnpj"}},
		{name: "letters", in: registration{CNPJ: "11222333000181", CPF: "5299822472X"}, failed: []string{"cpf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if len(tt.failed) == 0 {
				assert.NoError(t, err)
				return
			}
			var fieldErrs validator.ValidationErrors
			require.ErrorAs(t, err, &fieldErrs)
			var got []string
			for _, fe := range fieldErrs {
				got = append(got, fe.Field())
				assert.Equal(t, "Must contain exactly "+fe.Param()+" digits", getValidationMessage(fe))
			}
			assert.Equal(t, tt.failed, got)
		})
	}
}
