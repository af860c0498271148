package mangadventure

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeResponse(status int, body string) *http.Response {
	req, _ := http.NewRequest(http.MethodGet, "https://example.com/api/v2/series", nil)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

func TestDecodeNotFound(t *testing.T) {
	_, err := decode[remoteSeries](fakeResponse(http.StatusNotFound, "not found"))
	require.Error(t, err)

	var re *RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 404, re.Status)
	assert.Equal(t, "not found", re.Body)
	assert.Equal(t, "https://example.com/api/v2/series", re.URL)
	assert.True(t, IsNotFound(err))
}

func TestDecodeServerError(t *testing.T) {
	_, err := decode[remoteSeries](fakeResponse(http.StatusBadGateway, ""))

	var re *RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 502, re.Status)
	assert.False(t, IsNotFound(err))
}

func TestDecodeEmptyBody(t *testing.T) {
	for _, body := range []string{"", "  \n"} {
		_, err := decode[remoteSeries](fakeResponse(http.StatusOK, body))

		var de *DecodeError
		require.True(t, errors.As(err, &de), "body %q", body)
		assert.ErrorIs(t, err, errEmptyBody)
	}
}

func TestDecodeMalformed(t *testing.T) {
	got, err := decode[paginator[remoteSeries]](fakeResponse(http.StatusOK, `{"results":[{"slug":"a"}`))

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Empty(t, got.Results)
}

func TestDecodeWrongShape(t *testing.T) {
	_, err := decode[paginator[remoteSeries]](fakeResponse(http.StatusOK, `{"results":"nope"}`))

	var de *DecodeError
	assert.True(t, errors.As(err, &de))
}

func TestDecodeOK(t *testing.T) {
	got, err := decode[paginator[remoteSeries]](fakeResponse(http.StatusOK,
		`{"total":1,"last":true,"results":[{"slug":"foo","title":"Foo","cover":"u"}]}`))
	require.NoError(t, err)

	assert.True(t, got.Last)
	assert.Equal(t, 1, got.Total)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "foo", got.Results[0].Slug)
}
