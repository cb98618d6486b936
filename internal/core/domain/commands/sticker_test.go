package commands

import (
	"context"
	"errors"
	"hyperbot/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockConverter struct {
	got []byte
	err error
}

func (m *MockConverter) Sticker(_ context.Context, image []byte) ([]byte, error) {
	m.got = image
	if m.err != nil {
		return nil, m.err
	}
	return []byte("webp"), nil
}

func TestSticker(t *testing.T) {
	tests := []struct {
		name       string
		quotedKind domain.ContentKind
		convertErr error
		wantSent   []domain.ContentKind
		wantTexts  []string
	}{
		{
			name:       "quoted image",
			quotedKind: domain.KindImage,
			wantSent:   []domain.ContentKind{domain.KindSticker},
		},
		{
			name:       "quoted video",
			quotedKind: domain.KindVideo,
			wantTexts:  []string{"reply to an image to turn it into a sticker"},
		},
		{
			name:      "nothing quoted",
			wantTexts: []string{"reply to an image to turn it into a sticker"},
		},
		{
			name:       "conversion fails",
			quotedKind: domain.KindImage,
			convertErr: errors.New("exit status 1"),
			wantTexts:  []string{"❌ could not convert that image"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conn := &MockTransport{quotedData: []byte("png"), quotedKind: domain.KindImage}
			converter := &MockConverter{err: tc.convertErr}
			msg := &domain.Message{ID: "K1", ChatID: "555@s.whatsapp.net", Kind: domain.KindExtendedText,
				Text: ".sticker"}
			if tc.quotedKind != "" {
				msg.Quoted = domain.Quoted{ID: "Q1", Kind: tc.quotedKind}
			}

			require.NoError(t, NewSticker(converter).Respond(t.Context(), conn, msg, conn.dispatchContext(msg)))

			assert.Equal(t, tc.wantSent, conn.bytesSent)
			assert.Equal(t, tc.wantTexts, conn.texts)
			if tc.quotedKind == domain.KindImage {
				assert.Equal(t, []byte("png"), converter.got)
			}
		})
	}
}

func TestStickerDownloadFailure(t *testing.T) {
	conn := &MockTransport{downloadErr: domain.ErrNoQuotedMedia}
	msg := &domain.Message{ChatID: "555@s.whatsapp.net", Kind: domain.KindExtendedText, Text: ".s",
		Quoted: domain.Quoted{ID: "Q1", Kind: domain.KindImage}}

	err := NewSticker(&MockConverter{}).Respond(t.Context(), conn, msg, conn.dispatchContext(msg))

	assert.ErrorIs(t, err, domain.ErrNoQuotedMedia)
	assert.Empty(t, conn.bytesSent)
}
