package sender

import (
	"hyperbot/internal/core/domain"

	"go.mau.fi/whatsmeow/proto/waE2E"
)

// UnwrapMessage strips ephemeral, view-once and edit wrappers from a message.
func UnwrapMessage(m *waE2E.Message) *waE2E.Message {
	for range 4 {
		var next *waE2E.Message
		switch {
		case m.GetEphemeralMessage() != nil:
			next = m.GetEphemeralMessage().GetMessage()
		case m.GetViewOnceMessage() != nil:
			next = m.GetViewOnceMessage().GetMessage()
		case m.GetViewOnceMessageV2() != nil:
			next = m.GetViewOnceMessageV2().GetMessage()
		case m.GetViewOnceMessageV2Extension() != nil:
			next = m.GetViewOnceMessageV2Extension().GetMessage()
		case m.GetDocumentWithCaptionMessage() != nil:
			next = m.GetDocumentWithCaptionMessage().GetMessage()
		}

		if next == nil {
			return m
		}
		m = next
	}

	return m
}

// KindOf reports the payload type of an unwrapped message.
func KindOf(m *waE2E.Message) domain.ContentKind {
	switch {
	case m == nil:
		return domain.KindOther
	case m.GetConversation() != "":
		return domain.KindConversation
	case m.GetExtendedTextMessage() != nil:
		return domain.KindExtendedText
	case m.GetImageMessage() != nil:
		return domain.KindImage
	case m.GetVideoMessage() != nil:
		return domain.KindVideo
	case m.GetAudioMessage() != nil:
		return domain.KindAudio
	case m.GetStickerMessage() != nil:
		return domain.KindSticker
	case m.GetDocumentMessage() != nil:
		return domain.KindDocument
	case m.GetReactionMessage() != nil:
		return domain.KindReaction
	default:
		return domain.KindOther
	}
}

// ContextInfoOf returns the reply and mention metadata carried by any message type.
func ContextInfoOf(m *waE2E.Message) *waE2E.ContextInfo {
	switch {
	case m.GetExtendedTextMessage() != nil:
		return m.GetExtendedTextMessage().GetContextInfo()
	case m.GetImageMessage() != nil:
		return m.GetImageMessage().GetContextInfo()
	case m.GetVideoMessage() != nil:
		return m.GetVideoMessage().GetContextInfo()
	case m.GetAudioMessage() != nil:
		return m.GetAudioMessage().GetContextInfo()
	case m.GetStickerMessage() != nil:
		return m.GetStickerMessage().GetContextInfo()
	case m.GetDocumentMessage() != nil:
		return m.GetDocumentMessage().GetContextInfo()
	default:
		return nil
	}
}

// TextOf returns the text of a quoted message, or the caption for media.
func TextOf(m *waE2E.Message) string {
	switch {
	case m.GetConversation() != "":
		return m.GetConversation()
	case m.GetExtendedTextMessage() != nil:
		return m.GetExtendedTextMessage().GetText()
	case m.GetImageMessage() != nil:
		return m.GetImageMessage().GetCaption()
	case m.GetVideoMessage() != nil:
		return m.GetVideoMessage().GetCaption()
	case m.GetDocumentMessage() != nil:
		return m.GetDocumentMessage().GetCaption()
	default:
		return ""
	}
}
