package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"unicode/utf8"
)

// ErrEmptyPayload indica que el proveedor respondio sin cuerpo.
var ErrEmptyPayload = errors.New("empty response payload")

// ErrorClass clasifica un fallo de invocacion.
type ErrorClass string

const (
	ClassTransient ErrorClass = "transient"
	ClassPermanent ErrorClass = "permanent"
	ClassUnknown   ErrorClass = "unknown"
)

// AttemptOutcome registra el resultado de un intento fallido.
type AttemptOutcome struct {
	Attempt int
	Class   ErrorClass
	Err     error
}

// ModelInvocationError se devuelve cuando se agotan los reintentos o el payload vino vacio.
type ModelInvocationError struct {
	ModelID  string
	Attempts []AttemptOutcome
	Err      error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("model invocation failed for %s after %d attempt(s): %v", e.ModelID, len(e.Attempts), e.Err)
}

func (e *ModelInvocationError) Unwrap() error {
	return e.Err
}

// LastClass devuelve la clase del ultimo intento (unknown si no hubo intentos).
func (e *ModelInvocationError) LastClass() ErrorClass {
	if len(e.Attempts) == 0 {
		return ClassUnknown
	}
	return e.Attempts[len(e.Attempts)-1].Class
}

// ResponseParsingError indica que no se pudo extraer texto o JSON de la respuesta.
type ResponseParsingError struct {
	ModelID string
	Reason  string
	Raw     string
	Err     error
}

func (e *ResponseParsingError) Error() string {
	msg := "response parsing failed"
	if e.ModelID != "" {
		msg += " for " + e.ModelID
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResponseParsingError) Unwrap() error {
	return e.Err
}

// StatusError es un error HTTP del proveedor.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm http error: status=%d", e.StatusCode)
}

// Classify separa fallos transitorios (throttling, timeouts, 5xx) de permanentes.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTransient
	}
	if errors.Is(err, context.Canceled) {
		return ClassPermanent
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooEarly,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= 500:
			return ClassTransient
		case statusErr.StatusCode >= 400:
			return ClassPermanent
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTransient
	}
	return ClassUnknown
}

func truncateForError(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
