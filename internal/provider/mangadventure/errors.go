package mangadventure

import (
	"errors"
	"fmt"
	"net/http"
)

var errEmptyBody = errors.New("empty response body")

// TransportError is a connection, TLS or timeout failure reported by the
// HTTP client before a usable response arrived.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError is a response with a status other than 200 OK.
type RemoteError struct {
	URL    string
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("HTTP error %d from %s: %s", e.Status, e.URL, e.Body)
}

// DecodeError is a 200 OK response whose body is empty or not valid JSON
// for the expected schema.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsNotFound reports whether err carries a 404 from the remote API.
func IsNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}
