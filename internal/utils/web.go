package utils

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sportlink-dev/sportlink/internal/errors"
	"github.com/sportlink-dev/sportlink/internal/logger"
)

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WriteErrorAndStatusCode renders err as a JSON error body. Plain errors map
// to a generic 500; detail stays in the server log only.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	if e, ok := err.(*errors.ErrorWithStatusCode); ok {
		WriteJSONStatus(w, e.StatusCode, errorBody{Message: e.Message, Code: e.Code})
		return
	}
	logger.Log.Error("unhandled error", "error", err)
	WriteJSONStatus(w, http.StatusInternalServerError, errorBody{Message: "Internal server error"})
}

func WriteJSON(w http.ResponseWriter, v interface{}) {
	WriteJSONStatus(w, http.StatusOK, v)
}

func WriteJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		return errors.BadRequest("Body is invalid json", "")
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(body); err != nil {
		return errors.BadRequest("Required fields missing", errors.CodeMissingParams)
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		return errors.BadRequest("Body is invalid json", "")
	}
	return nil
}
