package utils

import (
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"

	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/tireserve/platform/internal/utils/response"
)

func DecodeJSONBody(r *http.Request, dest any) error {
	if r.Body == nil {
		return stdErrors.New("request body is empty")
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		if stdErrors.Is(err, io.EOF) {
			return stdErrors.New("request body is empty")
		}

		return fmt.Errorf("invalid request body: %w", err)
	}

	return nil
}

// ParseAndValidate decodes the body into dest and validates it, writing the
// error response itself. Returns false when the caller should stop.
func ParseAndValidate(r *http.Request, w http.ResponseWriter, dest any, validate *validator.Validate) bool {
	if err := DecodeJSONBody(r, dest); err != nil {
		response.WriteJson(w, http.StatusBadRequest, response.APIResponse{
			Success: false,
			Error:   &response.ErrorResponse{Code: "BAD_REQUEST", Message: err.Error()},
		})

		return false
	}

	if err := validate.Struct(dest); err != nil {
		var validationErrs validator.ValidationErrors
		if stdErrors.As(err, &validationErrs) {
			response.ValidationError(w, validationErrs)
		} else {
			response.WriteJson(w, http.StatusBadRequest, response.APIResponse{
				Success: false,
				Error:   &response.ErrorResponse{Code: "VALIDATION_ERROR", Message: "invalid input data"},
			})
		}

		return false
	}

	return true
}
