package sender

import (
	"context"
	"errors"
	"fmt"
	"hyperbot/internal/adapters/file"
	"hyperbot/internal/core/domain"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"golang.org/x/time/rate"
	"google.golang.org/protobuf/proto"
)

//go:generate mockery --name Client

// MessageLimit is the longest text body sent in a single message. Longer replies are split.
const MessageLimit = 65536

var ErrUnsupportedMedia = errors.New("unsupported media kind")

// Client is the subset of the whatsmeow client the sender relies on.
type Client interface {
	SendMessage(ctx context.Context, to types.JID, message *waE2E.Message,
		extra ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error)
	Upload(ctx context.Context, plaintext []byte, appInfo whatsmeow.MediaType) (whatsmeow.UploadResponse, error)
	Download(ctx context.Context, msg whatsmeow.DownloadableMessage) ([]byte, error)
	MarkRead(ctx context.Context, ids []types.MessageID, timestamp time.Time, chat, sender types.JID,
		receiptTypeExtra ...types.ReceiptType) error
	SendChatPresence(ctx context.Context, jid types.JID, state types.ChatPresence,
		media types.ChatPresenceMedia) error
	GetGroupInfo(ctx context.Context, jid types.JID) (*types.GroupInfo, error)
	BuildRevoke(chat, sender types.JID, id types.MessageID) *waE2E.Message
	BuildReaction(chat, sender types.JID, id types.MessageID, reaction string) *waE2E.Message
	SetStatusMessage(ctx context.Context, msg string) error
}

type Options struct {
	// SendRate is the minimum spacing between outbound messages once the burst is spent.
	SendRate  time.Duration
	SendBurst int
	// MaxFileSize returns the cap in bytes for media fetched from URLs. It is asked on every send so runtime
	// setting changes apply; nil or zero means no cap.
	MaxFileSize func(ctx context.Context) int64
}

type WhatsApp struct {
	client  Client
	self    func() string
	limiter *rate.Limiter
	maxSize func(ctx context.Context) int64
}

// NewWhatsApp wraps a paired whatsmeow client.
func NewWhatsApp(cli *whatsmeow.Client, opts Options) *WhatsApp {
	return newWhatsApp(cli, func() string {
		if cli.Store == nil || cli.Store.ID == nil {
			return ""
		}
		return cli.Store.ID.String()
	}, opts)
}

func newWhatsApp(client Client, self func() string, opts Options) *WhatsApp {
	limit := rate.Inf
	if opts.SendRate > 0 {
		limit = rate.Every(opts.SendRate)
	}

	burst := opts.SendBurst
	if burst < 1 {
		burst = 1
	}

	return &WhatsApp{
		client:  client,
		self:    self,
		limiter: rate.NewLimiter(limit, burst),
		maxSize: opts.MaxFileSize,
	}
}

func (s *WhatsApp) Self() string {
	return s.self()
}

func (s *WhatsApp) send(ctx context.Context, chatID string, message *waE2E.Message) error {
	jid, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	if _, err := s.client.SendMessage(ctx, jid, message); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
	}

	return nil
}

// quoteInfo builds the reply reference for quoted. It returns nil when nothing is quoted.
func quoteInfo(quoted *domain.Message) *waE2E.ContextInfo {
	if quoted == nil || quoted.ID == "" {
		return nil
	}

	original := &waE2E.Message{Conversation: proto.String(quoted.Body())}
	if evt, ok := quoted.Raw.(*events.Message); ok && evt.Message != nil {
		original = evt.Message
	}

	participant := quoted.Participant
	if participant == "" {
		participant = quoted.ChatID
	}

	return &waE2E.ContextInfo{
		StanzaID:      proto.String(quoted.ID),
		Participant:   proto.String(participant),
		QuotedMessage: original,
	}
}

func (s *WhatsApp) SendText(ctx context.Context, chatID string, text string, quoted *domain.Message) error {
	for _, chunk := range splitText(text, MessageLimit) {
		message := &waE2E.Message{Conversation: proto.String(chunk)}
		if info := quoteInfo(quoted); info != nil {
			message = &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{
				Text:        proto.String(chunk),
				ContextInfo: info,
			}}
		}

		if err := s.send(ctx, chatID, message); err != nil {
			log.Error().Err(err).Str("chat", chatID).Msg("failed to send text")
			return err
		}
	}

	return nil
}

// splitText cuts text into chunks of at most limit runes.
func splitText(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	chunks := make([]string, 0, 2)
	runes := []rune(text)
	for len(runes) > limit {
		chunks = append(chunks, string(runes[:limit]))
		runes = runes[limit:]
	}

	return append(chunks, string(runes))
}

func (s *WhatsApp) SendMedia(ctx context.Context, chatID string, media domain.Media, quoted *domain.Message) error {
	var limit int64
	if s.maxSize != nil {
		limit = s.maxSize(ctx)
	}

	download, err := file.DownloadFile(ctx, media.URL, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch media: %w", err)
	}

	if media.Mimetype == "" {
		media.Mimetype = download.Mimetype
	}

	return s.upload(ctx, chatID, media, download.Data, quoted)
}

func (s *WhatsApp) SendMediaBytes(ctx context.Context, chatID string, kind domain.ContentKind, data []byte,
	quoted *domain.Message) error {
	return s.upload(ctx, chatID, domain.Media{Kind: kind, Mimetype: http.DetectContentType(data)}, data, quoted)
}

func mediaType(kind domain.ContentKind) (whatsmeow.MediaType, error) {
	switch kind {
	case domain.KindImage, domain.KindSticker:
		return whatsmeow.MediaImage, nil
	case domain.KindVideo:
		return whatsmeow.MediaVideo, nil
	case domain.KindAudio:
		return whatsmeow.MediaAudio, nil
	case domain.KindDocument:
		return whatsmeow.MediaDocument, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, kind)
	}
}

func (s *WhatsApp) upload(ctx context.Context, chatID string, media domain.Media, data []byte,
	quoted *domain.Message) error {
	mt, err := mediaType(media.Kind)
	if err != nil {
		return err
	}

	uploaded, err := s.client.Upload(ctx, data, mt)
	if err != nil {
		return fmt.Errorf("error uploading media: %w", err)
	}

	log.Debug().Str("chat", chatID).Str("kind", string(media.Kind)).Int("bytes", len(data)).
		Msg("media uploaded")

	info := quoteInfo(quoted)
	message := &waE2E.Message{}

	switch media.Kind {
	case domain.KindImage:
		message.ImageMessage = &waE2E.ImageMessage{
			Caption:       optional(media.Caption),
			Mimetype:      proto.String(media.Mimetype),
			URL:           &uploaded.URL,
			DirectPath:    &uploaded.DirectPath,
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    &uploaded.FileLength,
			ContextInfo:   info,
		}
	case domain.KindSticker:
		message.StickerMessage = &waE2E.StickerMessage{
			Mimetype:      proto.String("image/webp"),
			URL:           &uploaded.URL,
			DirectPath:    &uploaded.DirectPath,
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    &uploaded.FileLength,
			ContextInfo:   info,
		}
	case domain.KindVideo:
		message.VideoMessage = &waE2E.VideoMessage{
			Caption:       optional(media.Caption),
			Mimetype:      proto.String(media.Mimetype),
			URL:           &uploaded.URL,
			DirectPath:    &uploaded.DirectPath,
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    &uploaded.FileLength,
			ContextInfo:   info,
		}
	case domain.KindAudio:
		mimetype := media.Mimetype
		if mimetype == "" && media.Voice {
			mimetype = "audio/ogg; codecs=opus"
		}
		message.AudioMessage = &waE2E.AudioMessage{
			Mimetype:      proto.String(mimetype),
			URL:           &uploaded.URL,
			DirectPath:    &uploaded.DirectPath,
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    &uploaded.FileLength,
			PTT:           proto.Bool(media.Voice),
			ContextInfo:   info,
		}
	case domain.KindDocument:
		name := media.FileName
		if name == "" {
			name = "file"
		}
		message.DocumentMessage = &waE2E.DocumentMessage{
			Title:         proto.String(name),
			FileName:      proto.String(name),
			Caption:       optional(media.Caption),
			Mimetype:      proto.String(media.Mimetype),
			URL:           &uploaded.URL,
			DirectPath:    &uploaded.DirectPath,
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    &uploaded.FileLength,
			ContextInfo:   info,
		}
	}

	return s.send(ctx, chatID, message)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return proto.String(s)
}

// senderJID resolves who authored msg, which is the chat itself in direct chats.
func (s *WhatsApp) senderJID(msg *domain.Message) (types.JID, types.JID, error) {
	chat, err := types.ParseJID(msg.ChatID)
	if err != nil {
		return types.JID{}, types.JID{}, fmt.Errorf("invalid chat id %q: %w", msg.ChatID, err)
	}

	author := msg.Participant
	if msg.FromMe {
		author = s.self()
	} else if evt, ok := msg.Raw.(*events.Message); ok && evt.Info.IsGroup {
		// keys carry the sender as addressed by the server, which is the lid in lid groups
		return chat, evt.Info.Sender.ToNonAD(), nil
	}
	if author == "" {
		return chat, chat, nil
	}

	sender, err := types.ParseJID(author)
	if err != nil {
		return types.JID{}, types.JID{}, fmt.Errorf("invalid sender id %q: %w", author, err)
	}

	return chat, sender.ToNonAD(), nil
}

func (s *WhatsApp) React(ctx context.Context, msg *domain.Message, emoji string) error {
	chat, sender, err := s.senderJID(msg)
	if err != nil {
		return err
	}

	return s.send(ctx, chat.String(), s.client.BuildReaction(chat, sender, msg.ID, emoji))
}

func (s *WhatsApp) Revoke(ctx context.Context, msg *domain.Message) error {
	chat, sender, err := s.senderJID(msg)
	if err != nil {
		return err
	}

	return s.send(ctx, chat.String(), s.client.BuildRevoke(chat, sender, msg.ID))
}

func (s *WhatsApp) MarkRead(ctx context.Context, msg *domain.Message) error {
	chat, sender, err := s.senderJID(msg)
	if err != nil {
		return err
	}

	timestamp := msg.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	return s.client.MarkRead(ctx, []types.MessageID{msg.ID}, timestamp, chat, sender)
}

func (s *WhatsApp) SendPresence(ctx context.Context, chatID string, presence domain.Presence) error {
	jid, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}

	state, media := types.ChatPresenceComposing, types.ChatPresenceMediaText
	switch presence {
	case domain.PresenceRecording:
		media = types.ChatPresenceMediaAudio
	case domain.PresencePaused:
		state = types.ChatPresencePaused
	}

	return s.client.SendChatPresence(ctx, jid, state, media)
}

func (s *WhatsApp) GroupMetadata(ctx context.Context, chatID string) (domain.GroupInfo, error) {
	jid, err := types.ParseJID(chatID)
	if err != nil {
		return domain.GroupInfo{}, fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}

	info, err := s.client.GetGroupInfo(ctx, jid)
	if err != nil {
		return domain.GroupInfo{}, fmt.Errorf("failed to fetch group info: %w", err)
	}

	group := domain.GroupInfo{
		ID:           chatID,
		Subject:      info.Name,
		Participants: make([]domain.Participant, len(info.Participants)),
	}
	for i, p := range info.Participants {
		id := p.JID
		if id.Server == types.HiddenUserServer && !p.PhoneNumber.IsEmpty() {
			id = p.PhoneNumber
		}
		group.Participants[i] = domain.Participant{
			ID:      id.ToNonAD().String(),
			IsAdmin: p.IsAdmin || p.IsSuperAdmin,
		}
	}

	return group, nil
}

// DownloadQuoted fetches the media attached to the message quoted by msg.
func (s *WhatsApp) DownloadQuoted(ctx context.Context, msg *domain.Message) ([]byte, domain.ContentKind, error) {
	evt, ok := msg.Raw.(*events.Message)
	if !ok || evt.Message == nil {
		return nil, "", domain.ErrNoQuotedMedia
	}

	quoted := ContextInfoOf(UnwrapMessage(evt.Message)).GetQuotedMessage()
	if quoted == nil {
		return nil, "", domain.ErrNoQuotedMedia
	}
	quoted = UnwrapMessage(quoted)

	var media whatsmeow.DownloadableMessage
	kind := KindOf(quoted)
	switch kind {
	case domain.KindImage:
		media = quoted.GetImageMessage()
	case domain.KindVideo:
		media = quoted.GetVideoMessage()
	case domain.KindAudio:
		media = quoted.GetAudioMessage()
	case domain.KindSticker:
		media = quoted.GetStickerMessage()
	case domain.KindDocument:
		media = quoted.GetDocumentMessage()
	default:
		return nil, "", domain.ErrNoQuotedMedia
	}

	data, err := s.client.Download(ctx, media)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download quoted media: %w", err)
	}

	return data, kind, nil
}

func (s *WhatsApp) SetAbout(ctx context.Context, text string) error {
	return s.client.SetStatusMessage(ctx, strings.TrimSpace(text))
}
