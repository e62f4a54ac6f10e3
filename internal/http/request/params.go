// internal/http/request/params.go
package request

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBodySize caps JSON request bodies.
const maxBodySize = 1 << 20

// RouteUUIDParam parses a chi URL parameter as a UUID.
func RouteUUIDParam(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", param)
	}
	return id, nil
}

// QueryStringParam returns the query value or nil when absent or empty.
func QueryStringParam(r *http.Request, param string) *string {
	value := r.URL.Query().Get(param)
	if value == "" {
		return nil
	}
	return &value
}

// QueryBoolParam returns fallback when the parameter is absent or malformed.
func QueryBoolParam(r *http.Request, param string, fallback bool) bool {
	value, err := strconv.ParseBool(r.URL.Query().Get(param))
	if err != nil {
		return fallback
	}
	return value
}

// DecodeJSON decodes the request body into v. An empty body leaves v untouched.
func DecodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	return nil
}
