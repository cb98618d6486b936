package sender

import (
	"hyperbot/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"google.golang.org/protobuf/proto"
)

func TestUnwrapAndKind(t *testing.T) {
	tests := []struct {
		name     string
		msg      *waE2E.Message
		wantKind domain.ContentKind
		wantText string
	}{
		{
			name:     "conversation",
			msg:      &waE2E.Message{Conversation: proto.String("hi")},
			wantKind: domain.KindConversation,
			wantText: "hi",
		},
		{
			name: "ephemeral extended text",
			msg: &waE2E.Message{EphemeralMessage: &waE2E.FutureProofMessage{Message: &waE2E.Message{
				ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: proto.String(".menu")},
			}}},
			wantKind: domain.KindExtendedText,
			wantText: ".menu",
		},
		{
			name: "view once image inside ephemeral",
			msg: &waE2E.Message{EphemeralMessage: &waE2E.FutureProofMessage{Message: &waE2E.Message{
				ViewOnceMessageV2: &waE2E.FutureProofMessage{Message: &waE2E.Message{
					ImageMessage: &waE2E.ImageMessage{Caption: proto.String("look")},
				}},
			}}},
			wantKind: domain.KindImage,
			wantText: "look",
		},
		{
			name:     "sticker",
			msg:      &waE2E.Message{StickerMessage: &waE2E.StickerMessage{}},
			wantKind: domain.KindSticker,
		},
		{
			name:     "nil message",
			wantKind: domain.KindOther,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inner := UnwrapMessage(tc.msg)
			assert.Equal(t, tc.wantKind, KindOf(inner))
			assert.Equal(t, tc.wantText, TextOf(inner))
		})
	}
}

func TestContextInfoOf(t *testing.T) {
	info := &waE2E.ContextInfo{StanzaID: proto.String("Q1"), MentionedJID: []string{"1@s.whatsapp.net"}}

	assert.Equal(t, info, ContextInfoOf(&waE2E.Message{
		VideoMessage: &waE2E.VideoMessage{ContextInfo: info},
	}))
	assert.Nil(t, ContextInfoOf(&waE2E.Message{Conversation: proto.String("x")}))
	assert.Nil(t, ContextInfoOf(nil))
}
