package file

import (
	"hyperbot/internal/core/domain"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadFile(t *testing.T) {
	tests := []struct {
		name         string
		inputBytes   []byte
		contentType  string
		status       int
		maxBytes     int64
		wantMimetype string
		wantErr      error
		wantAnyErr   bool
	}{
		{
			name:         "success",
			inputBytes:   []byte("test\n"),
			contentType:  "video/mp4",
			status:       http.StatusOK,
			wantMimetype: "video/mp4",
		},
		{
			name:         "sniffs missing content type",
			inputBytes:   []byte("\x89PNG\x0D\x0A\x1A\x0A rest"),
			contentType:  "application/octet-stream",
			status:       http.StatusOK,
			wantMimetype: "image/png",
		},
		{
			name:       "not found",
			inputBytes: []byte("not found"),
			status:     http.StatusNotFound,
			wantAnyErr: true,
		},
		{
			name:        "too large",
			inputBytes:  []byte("0123456789"),
			contentType: "video/mp4",
			status:      http.StatusOK,
			maxBytes:    4,
			wantErr:     domain.ErrFileTooLarge,
		},
		{
			name:         "at limit",
			inputBytes:   []byte("0123"),
			contentType:  "audio/mpeg",
			status:       http.StatusOK,
			maxBytes:     4,
			wantMimetype: "audio/mpeg",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tc.contentType != "" {
					w.Header().Set("Content-Type", tc.contentType)
				}
				w.WriteHeader(tc.status)
				_, err := w.Write(tc.inputBytes)
				assert.NoError(t, err)
			}))
			defer srv.Close()

			res, err := DownloadFile(t.Context(), srv.URL, tc.maxBytes)
			switch {
			case tc.wantErr != nil:
				require.ErrorIs(t, err, tc.wantErr)
			case tc.wantAnyErr:
				require.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.inputBytes, res.Data)
				assert.Equal(t, tc.wantMimetype, res.Mimetype)
			}
		})
	}
}

func TestDownloadFileStreamedBeyondLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		flusher := w.(http.Flusher)
		for i := 0; i < 4; i++ {
			_, _ = w.Write([]byte("chunk"))
			flusher.Flush()
		}
	}))
	defer srv.Close()

	_, err := DownloadFile(t.Context(), srv.URL, 8)

	require.ErrorIs(t, err, domain.ErrFileTooLarge)
}
