package converter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMagick_Sticker(t *testing.T) {
	tests := []struct {
		name    string
		image   []byte
		out     []byte
		runErr  error
		wantErr error
	}{
		{
			name:  "converts through stdin",
			image: []byte("png"),
			out:   []byte("RIFFwebp"),
		},
		{
			name:    "empty image",
			wantErr: ErrEmptyImage,
		},
		{
			name:   "conversion fails",
			image:  []byte("png"),
			runErr: errors.New("exit status 1"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotArgs []string
			var gotStdin []byte
			m := &Magick{
				magickBinary: []string{"magick"},
				run: func(_ context.Context, args []string, stdin []byte) ([]byte, error) {
					gotArgs, gotStdin = args, stdin
					return tc.out, tc.runErr
				},
			}

			out, err := m.Sticker(t.Context(), tc.image)
			switch {
			case tc.wantErr != nil:
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, gotArgs)
			case tc.runErr != nil:
				require.ErrorIs(t, err, tc.runErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.out, out)
				assert.Equal(t, tc.image, gotStdin)
				assert.Equal(t, []string{"magick", "-", "-resize", "512x512", "-background", "none",
					"-gravity", "center", "-extent", "512x512", "webp:-"}, gotArgs)
			}
		})
	}
}
