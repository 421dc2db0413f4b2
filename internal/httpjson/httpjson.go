// Package httpjson holds the JSON response and request helpers shared by the
// HTTP handlers.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/DevSidd2006/learnquest/internal/apierr"
	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/models"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError is one entry in a 400 response's details list.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func Write(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error writes err as an ErrorResponse. Non-apierr errors become a 500 with
// the fallback message and are logged with op.
func Error(w http.ResponseWriter, log *logger.Logger, op string, err error, fallback string) {
	status := apierr.Status(err)
	msg, details := apierr.Public(err, fallback)
	if status >= http.StatusInternalServerError {
		log.Error(op+" failed", "error", err, "status", status)
	}
	Write(w, status, models.ErrorResponse{Error: msg, Details: details})
}

// Decode reads a JSON body into v and runs its validate tags. Failures come
// back as *apierr.Error with status 400.
func Decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apierr.BadRequest("Request body is required", nil)
		}
		return apierr.BadRequest("Invalid request body", nil)
	}
	return Validate(v)
}

// Validate runs the struct's validate tags.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierr.BadRequest("Invalid request data", nil)
	}
	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return apierr.BadRequest("Invalid request data", details)
}
