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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordPaymentInput struct {
	TenantID string  `json:"tenant_id" binding:"required,uuid"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Mode     string  `json:"mode" binding:"required,oneof=mpesa cash bank cheque"`
}

func validationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	router := gin.New()
	router.POST("/payments", func(c *gin.Context) {
		var req recordPaymentInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func postPayment(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError_ReportsEachField(t *testing.T) {
	router := validationRouter()

	w := postPayment(router, `{"tenant_id": "not-a-uuid", "amount": -5, "mode": "crypto"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ValidationErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.False(t, resp.Success)
	assert.Equal(t, "ERR_VALIDATION", resp.Error.Code)
	assert.Equal(t, "Request validation failed", resp.Error.Message)
	require.Len(t, resp.Error.Details, 3)

	// Field names come from the json tags, not the Go field names.
	fields := make(map[string]string, len(resp.Error.Details))
	for _, d := range resp.Error.Details {
		fields[d.Field] = d.Message
	}
	assert.Contains(t, fields, "tenant_id")
	assert.Contains(t, fields, "amount")
	assert.Equal(t, "Must be one of: mpesa cash bank cheque", fields["mode"])
}

func TestHandleValidationError_ValidInputPasses(t *testing.T) {
	router := validationRouter()

	w := postPayment(router, `{"tenant_id": "0c9ab32e-5b47-4ce6-9f7e-6f8f0e2f9a11", "amount": 2500, "mode": "mpesa"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	router := validationRouter()

	w := postPayment(router, `{"tenant_id": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	// A JSON syntax error has no field details, just the code.
	assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
}

func TestGetValidationMessage(t *testing.T) {
	type input struct {
		Required string `binding:"required"`
		Email    string `binding:"omitempty,email"`
		Min      string `binding:"omitempty,min=5"`
		Max      string `binding:"omitempty,max=3"`
		UUID     string `binding:"omitempty,uuid"`
		OneOf    string `binding:"omitempty,oneof=full partial"`
		GT       int    `binding:"omitempty,gt=0"`
		URL      string `binding:"omitempty,url"`
	}

	v := validator.New()
	// Gin's validator reads binding tags, not the default validate tags.
	v.SetTagName("binding")
	err := v.Struct(input{
		Email: "nope",
		Min:   "ab",
		Max:   "long",
		UUID:  "nope",
		OneOf: "half",
		GT:    -1,
		URL:   "nope",
	})
	require.Error(t, err)

	want := map[string]string{
		"Required": "This field is required",
		"Email":    "Invalid email format",
		"Min":      "Must be at least 5 characters",
		"Max":      "Must be at most 3 characters",
		"UUID":     "Invalid UUID format",
		"OneOf":    "Must be one of: full partial",
		"GT":       "Must be greater than 0",
		"URL":      "Invalid URL format",
	}

	validationErrs := err.(validator.ValidationErrors)
	require.Len(t, validationErrs, len(want))
	for _, e := range validationErrs {
		assert.Equal(t, want[e.StructField()], getValidationMessage(e), e.StructField())
	}
}
