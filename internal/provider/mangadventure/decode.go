package mangadventure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"mangadventure/internal/httputil"
)

// decode checks the status of resp and parses its body into T. It always
// closes the body. Failures are all-or-nothing: no partial value is
// returned.
func decode[T any](resp *http.Response) (T, error) {
	var v T
	defer resp.Body.Close()

	url := ""
	if resp.Request != nil && resp.Request.URL != nil {
		url = resp.Request.URL.String()
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, httputil.MaxBodySize))
	if err != nil {
		return v, &TransportError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return v, &RemoteError{URL: url, Status: resp.StatusCode, Body: string(body)}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return v, &DecodeError{URL: url, Err: errEmptyBody}
	}

	if err := json.Unmarshal(body, &v); err != nil {
		var zero T
		return zero, &DecodeError{URL: url, Err: err}
	}

	return v, nil
}
