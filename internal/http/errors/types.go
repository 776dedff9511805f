package errors

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// AppError define la estructura estándar para errores inesperados del servicio.
// Kind identifica la clase de error y, junto con Status, forma el ID estable.
type AppError struct {
	Kind   string
	Title  string
	Status int
	Err    error // causa original, sólo para logs
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.ID(), e.Title, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.ID(), e.Title)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// ID es el identificador estable del error: slug de "<kind> <status>",
// por ejemplo "internal-server-error-500".
func (e *AppError) ID() string {
	s := strings.ToLower(e.Kind + " " + strconv.Itoa(e.Status))
	return strings.Trim(slugRe.ReplaceAllString(s, "-"), "-")
}

// New crea un nuevo AppError
func New(status int, kind, title string) *AppError {
	return &AppError{Kind: kind, Title: title, Status: status}
}

// FromError convierte un error genérico en un AppError.
// Si no hay un AppError en la cadena, devuelve un 500 conservando la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WithCause devuelve una COPIA con la causa original.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// ERRORES PREDEFINIDOS
// =================================================================================

var (
	ErrNotFound            = New(http.StatusNotFound, "Not Found", "The requested resource does not exist.")
	ErrMethodNotAllowed    = New(http.StatusMethodNotAllowed, "Method Not Allowed", "The request method is not supported.")
	ErrRateLimitExceeded   = New(http.StatusTooManyRequests, "Rate Limit Exceeded", "Too many requests.")
	ErrInternalServerError = New(http.StatusInternalServerError, "Internal Server Error", "Something went wrong.")
	ErrServiceUnavailable  = New(http.StatusServiceUnavailable, "Service Unavailable", "The service is temporarily unavailable.")
)
