package tradervue

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// StatusImportConflict is returned by the import endpoint while another
// import is already running for the account.
const StatusImportConflict = http.StatusFailedDependency

// ErrImportTimeout reports that completion polling exhausted its retries
// while the import was still pending. The import may still finish
// server-side after the caller stops watching, so this is distinct from a
// failed import.
var ErrImportTimeout = errors.New("import still pending after polling retries exhausted")

// RequestError wraps a network-level failure (connection refused, timeout,
// DNS). The request never produced an HTTP status. The transport never
// retries these; retry policy belongs to the endpoint callers.
type RequestError struct {
	Op  string
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// APIError is a non-2xx HTTP response from the service. Message carries
// the server's error text when the body was parseable JSON.
type APIError struct {
	Status  int
	URL     string
	Body    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d from %s: %s", e.Status, e.URL, e.Message)
	}
	return fmt.Sprintf("HTTP %d from %s", e.Status, e.URL)
}

// IsClient reports whether the error is a 4xx response.
func (e *APIError) IsClient() bool { return e.Status >= 400 && e.Status < 500 }

// IsServer reports whether the error is a 5xx response.
func (e *APIError) IsServer() bool { return e.Status >= 500 }

// IsConflict reports whether err is the import-in-progress rejection.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == StatusImportConflict
}

// serverMessage digs the human-readable error out of an error response
// body. The service uses either an "error" or a "status" field; anything
// else comes back verbatim.
func serverMessage(body []byte) string {
	var payload struct {
		Error  string `json:"error"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return string(body)
	}
	if payload.Error != "" {
		return payload.Error
	}
	if payload.Status != "" {
		return payload.Status
	}
	return string(body)
}
