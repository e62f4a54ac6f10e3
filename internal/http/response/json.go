// internal/http/response/json.go
package response

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/apperr"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/http/request"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/log"
)

const contentTypeHeader = `application/json`

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// OK creates a new JSON response with a 200 status code.
func OK(w http.ResponseWriter, r *http.Request, body any) {
	writeJSON(w, r, http.StatusOK, toJSON(body))
}

// Created sends a created response to the client.
func Created(w http.ResponseWriter, r *http.Request, body any) {
	writeJSON(w, r, http.StatusCreated, toJSON(body))
}

// NoContent sends a no content response to the client.
func NoContent(w http.ResponseWriter, r *http.Request) {
	New(w, r).WithStatus(http.StatusNoContent).Write()
}

// ServerError sends an internal error to the client. The cause is logged, never sent.
func ServerError(w http.ResponseWriter, r *http.Request, err error) {
	log.Error(http.StatusText(http.StatusInternalServerError), append(requestFields(r, http.StatusInternalServerError), zap.Error(err))...)
	writeJSON(w, r, http.StatusInternalServerError, toJSONError(errors.New("internal server error")))
}

// BadRequest sends a bad request error to the client.
func BadRequest(w http.ResponseWriter, r *http.Request, err error) {
	clientError(w, r, http.StatusBadRequest, err)
}

// Unauthorized sends a not authorized error to the client.
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	clientError(w, r, http.StatusUnauthorized, errors.New("access unauthorized"))
}

// Forbidden sends a forbidden error to the client.
func Forbidden(w http.ResponseWriter, r *http.Request) {
	clientError(w, r, http.StatusForbidden, errors.New("access forbidden"))
}

// NotFound sends a resource not found error to the client.
func NotFound(w http.ResponseWriter, r *http.Request) {
	clientError(w, r, http.StatusNotFound, errors.New("resource not found"))
}

// Error maps a workflow error to its status code and writes it.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	if status == http.StatusInternalServerError {
		ServerError(w, r, err)
		return
	}
	clientError(w, r, status, errors.New(apperr.PublicMessage(err)))
}

// StatusCode returns the HTTP status for a workflow error.
func StatusCode(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindInvalidState, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindLimitExceeded:
		if apperr.CodeOf(err) == apperr.CodeRateLimited {
			return http.StatusTooManyRequests
		}
		return http.StatusUnprocessableEntity
	case apperr.KindInvalid:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func clientError(w http.ResponseWriter, r *http.Request, status int, err error) {
	log.Warn(http.StatusText(status), append(requestFields(r, status), zap.String("error", err.Error()))...)
	writeJSON(w, r, status, toJSONError(err))
}

func requestFields(r *http.Request, status int) []zap.Field {
	return []zap.Field{
		zap.String("client_ip", request.ClientIP(r)),
		zap.String("request.method", r.Method),
		zap.String("request.uri", r.RequestURI),
		zap.String("request.user_agent", r.UserAgent()),
		zap.Int("response.status_code", status),
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body []byte) {
	New(w, r).
		WithStatus(status).
		WithHeader("Content-Type", contentTypeHeader).
		WithBody(body).
		Write()
}

func toJSONError(err error) []byte {
	type errorMsg struct {
		ErrorMessage string `json:"error_message"`
	}

	return toJSON(errorMsg{ErrorMessage: err.Error()})
}

func toJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error("Unable to marshal JSON response", zap.Error(err))
		return []byte("")
	}

	return b
}
