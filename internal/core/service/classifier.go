package service

import (
	"context"
	"hyperbot/internal/core/domain"
	"hyperbot/internal/core/port"
	"slices"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

type Classifier struct {
	conn port.Transport
}

func NewClassifier(conn port.Transport) *Classifier {
	return &Classifier{conn: conn}
}

// Classify derives the routable facts of msg. Group facts are fetched from the transport only for group
// chats; a failed fetch leaves them empty.
func (c *Classifier) Classify(ctx context.Context, msg *domain.Message, settings domain.Settings) *domain.DispatchContext {
	body := msg.Body()
	isCommand, token := ParseCommand(body, settings.Prefix)
	args := ParseCommandArgs(body)

	self := c.conn.Self()
	botNumber := domain.NumberOf(self)
	botJID := ""
	if botNumber != "" {
		botJID = botNumber + domain.UserSuffix
	}

	sender := ResolveSender(msg, botJID)
	senderNumber := domain.NumberOf(sender)
	isMe := botNumber != "" && botNumber == senderNumber

	pushName := msg.PushName
	if pushName == "" {
		pushName = "User"
	}

	dc := &domain.DispatchContext{
		Trace:        newTrace(),
		ChatID:       msg.ChatID,
		Sender:       sender,
		SenderNumber: senderNumber,
		BotNumber:    botNumber,
		BotJID:       botJID,
		PushName:     pushName,
		IsCommand:    isCommand,
		Command:      token,
		Args:         args,
		Query:        strings.Join(args, " "),
		Body:         body,
		Kind:         msg.Kind,
		IsMe:         isMe,
		IsOwner:      isMe || settings.IsOwnerNumber(senderNumber),
		IsGroup:      IsGroupChat(msg.ChatID),
		IsReaction:   msg.Kind == domain.KindReaction,
		Participants: []domain.Participant{},
		GroupAdmins:  []string{},
	}

	if msg.Kind == domain.KindExtendedText {
		dc.Quoted = msg.Quoted
	}

	dc.Reply = func(ctx context.Context, text string) error {
		return c.conn.SendText(ctx, msg.ChatID, text, msg)
	}

	if dc.IsGroup {
		c.loadGroup(ctx, dc)
	}

	return dc
}

func (c *Classifier) loadGroup(ctx context.Context, dc *domain.DispatchContext) {
	group, err := c.conn.GroupMetadata(ctx, dc.ChatID)
	if err != nil {
		log.Warn().Err(err).Str("chatId", dc.ChatID).Msg("error getting group metadata")
		return
	}

	dc.GroupName = group.Subject
	if group.Participants != nil {
		dc.Participants = group.Participants
	}
	dc.GroupAdmins = group.Admins()
	dc.IsBotAdmin = dc.BotJID != "" && slices.Contains(dc.GroupAdmins, dc.BotJID)
	dc.IsAdmin = slices.Contains(dc.GroupAdmins, dc.Sender)
}

// ParseCommand reports whether body starts with prefix and returns the lower-cased first word after it.
func ParseCommand(body, prefix string) (bool, string) {
	if body == "" || prefix == "" || !strings.HasPrefix(body, prefix) {
		return false, ""
	}

	fields := strings.Fields(strings.TrimPrefix(body, prefix))
	if len(fields) == 0 {
		return true, ""
	}

	return true, strings.ToLower(fields[0])
}

// ParseCommandArgs splits the whole body and drops its first word. The prefix is not stripped first, so
// "! ping a" yields ["ping", "a"].
func ParseCommandArgs(body string) []string {
	fields := strings.Fields(body)
	if len(fields) <= 1 {
		return []string{}
	}

	return fields[1:]
}

// ResolveSender returns the bot itself for self-sent messages, else the group participant, else the chat.
func ResolveSender(msg *domain.Message, botJID string) string {
	if msg.FromMe && botJID != "" {
		return botJID
	}

	if msg.Participant != "" {
		return msg.Participant
	}

	return msg.ChatID
}

func IsGroupChat(chatID string) bool {
	return strings.HasSuffix(chatID, domain.GroupSuffix)
}

func newTrace() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}

	return id.String()
}
