package affiliate

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelfsearch/internal/testutil"
)

func TestHTTPLinker(t *testing.T) {
	var gotBody string
	server := testutil.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"url":"https://store.example/dp/0441013597?tag=x"}`))
	}))

	l := NewHTTPLinker(server.URL)
	link, err := l.BuildLink(context.Background(), "Dune", []string{"Frank Herbert"})
	require.NoError(t, err)
	assert.Equal(t, "https://store.example/dp/0441013597?tag=x", link)
	assert.JSONEq(t, `{"title":"Dune","authors":["Frank Herbert"]}`, gotBody)
}

func TestHTTPLinkerErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "nope", wantErr: "status 500"},
		{name: "empty url", status: http.StatusOK, body: `{"url":""}`, wantErr: "no url"},
		{name: "bad json", status: http.StatusOK, body: `{`, wantErr: "decoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testutil.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			_, err := NewHTTPLinker(server.URL).BuildLink(context.Background(), "Dune", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHTTPLinkerNotConfigured(t *testing.T) {
	_, err := NewHTTPLinker("").BuildLink(context.Background(), "Dune", nil)
	require.ErrorIs(t, err, ErrNotConfigured)
}
