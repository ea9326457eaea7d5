// Package httputil contains small helpers shared by the HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"
)

// MessageResponse is the body returned for status-only results and errors.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// RespondJSON writes v as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// RespondMessage writes a {"msg": ...} body with the given status code.
func RespondMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	RespondJSON(w, r, status, MessageResponse{Msg: msg})
}

// DecodeJSON decodes the request body into v. An empty body is reported the
// same way as malformed JSON so handlers have a single failure path.
func DecodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return errors.New("request body is empty")
	}

	return err
}
