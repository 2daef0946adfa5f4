// Package handler implements the HTTP handlers for the RouteSense API.
// Handlers decode and validate requests, call the domain services, and
// translate results and errors into JSON / problem+json responses.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/routesense/routesense/internal/api/models"
	"github.com/routesense/routesense/internal/api/response"
)

// maxBodyBytes caps request bodies at 1 MiB. Route geometries are the
// largest payloads we accept and stay well under this.
const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into dst. On failure it writes a
// 400 problem response and returns false; callers should return
// immediately.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		detail := "request body is not valid JSON"
		switch {
		case errors.Is(err, io.EOF):
			detail = "request body is required"
		case strings.HasPrefix(err.Error(), "json: unknown field"):
			detail = err.Error()
		}
		response.BadRequest(w, r, detail, nil)
		return false
	}
	return true
}

// fieldErr builds a single-field validation error list.
func fieldErr(field, message string) []models.FieldError {
	return []models.FieldError{{Field: field, Message: message, Code: "invalid"}}
}
