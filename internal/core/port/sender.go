package port

import (
	"context"
	"hyperbot/internal/core/domain"
)

type TextSender interface {
	// SendText sends text to a chat, quoting the given message when it is not nil.
	SendText(ctx context.Context, chatID string, text string, quoted *domain.Message) error
}

type MediaSender interface {
	// SendMedia downloads the media from its URL and sends it to a chat, quoting the given message when it
	// is not nil.
	SendMedia(ctx context.Context, chatID string, media domain.Media, quoted *domain.Message) error
}

type Transport interface {
	TextSender
	MediaSender
	// React sends an emoji reaction to the given message.
	React(ctx context.Context, msg *domain.Message, emoji string) error
	// MarkRead sends a read receipt for the given message.
	MarkRead(ctx context.Context, msg *domain.Message) error
	// SendPresence shows a chat state indicator in the given chat.
	SendPresence(ctx context.Context, chatID string, presence domain.Presence) error
	// GroupMetadata fetches subject and participants of a group chat.
	GroupMetadata(ctx context.Context, chatID string) (domain.GroupInfo, error)
	// Revoke deletes the given message for everyone.
	Revoke(ctx context.Context, msg *domain.Message) error
	// DownloadQuoted returns the bytes and kind of the media quoted by the given message.
	DownloadQuoted(ctx context.Context, msg *domain.Message) ([]byte, domain.ContentKind, error)
	// SendMediaBytes uploads raw media and sends it to a chat.
	SendMediaBytes(ctx context.Context, chatID string, kind domain.ContentKind, data []byte,
		quoted *domain.Message) error
	// SetAbout updates the profile about text of the bot account.
	SetAbout(ctx context.Context, text string) error
	// Self returns the jid of the bot account, empty while not paired.
	Self() string
}
