package handler

import (
	"hyperbot/internal/adapters/sender"
	"hyperbot/internal/core/domain"

	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

// Normalize converts a whatsmeow message event to a domain.Message. It reports false for events without
// routable content, such as protocol and key distribution messages.
func Normalize(evt *events.Message) (*domain.Message, bool) {
	if evt == nil || evt.Message == nil {
		return nil, false
	}

	inner := sender.UnwrapMessage(evt.Message)
	kind := sender.KindOf(inner)
	if kind == domain.KindOther {
		return nil, false
	}

	msg := &domain.Message{
		ID:        evt.Info.ID,
		ChatID:    evt.Info.Chat.String(),
		PushName:  evt.Info.PushName,
		FromMe:    evt.Info.IsFromMe,
		Kind:      kind,
		Timestamp: evt.Info.Timestamp,
		Raw:       evt,
	}

	if evt.Info.IsGroup || evt.Info.Chat.String() == domain.StatusBroadcast {
		msg.Participant = phoneJID(evt.Info.Sender, evt.Info.SenderAlt).String()
	}

	switch kind {
	case domain.KindConversation:
		msg.Text = inner.GetConversation()
	case domain.KindExtendedText:
		msg.Text = inner.GetExtendedTextMessage().GetText()
	case domain.KindImage:
		msg.Caption = inner.GetImageMessage().GetCaption()
	case domain.KindVideo:
		msg.Caption = inner.GetVideoMessage().GetCaption()
	}

	info := sender.ContextInfoOf(inner)
	if info == nil {
		return msg, true
	}

	msg.Mentions = info.GetMentionedJID()

	if info.GetStanzaID() != "" || info.GetQuotedMessage() != nil {
		quoted := sender.UnwrapMessage(info.GetQuotedMessage())
		msg.Quoted = domain.Quoted{
			ID:          info.GetStanzaID(),
			Participant: info.GetParticipant(),
			Kind:        sender.KindOf(quoted),
			Text:        sender.TextOf(quoted),
		}
	}

	return msg, true
}

// phoneJID prefers the phone number address of a sender hidden behind a LID, so owner and ban checks,
// which compare numbers, see the same identity in LID-addressed groups.
func phoneJID(sender, alt types.JID) types.JID {
	if sender.Server == types.HiddenUserServer && !alt.IsEmpty() {
		return alt.ToNonAD()
	}

	return sender.ToNonAD()
}
