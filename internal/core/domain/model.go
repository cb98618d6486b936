package domain

import (
	"context"
	"strings"
	"time"
)

type Author string

const (
	User   Author = "user"
	System Author = "system"
)

type Prompt struct {
	Prompt string
	Author Author
	Model  string
}

type ModelResponse struct {
	Response string
	Metadata ResponseMetadata
}

type ResponseMetadata struct {
	Model            string
	CompletionTokens int
	TotalTokens      int
}

// ContentKind is the discriminated type of an inbound message payload.
type ContentKind string

const (
	KindConversation ContentKind = "conversation"
	KindExtendedText ContentKind = "extendedText"
	KindImage        ContentKind = "image"
	KindVideo        ContentKind = "video"
	KindAudio        ContentKind = "audio"
	KindSticker      ContentKind = "sticker"
	KindDocument     ContentKind = "document"
	KindReaction     ContentKind = "reaction"
	KindOther        ContentKind = "other"
)

const (
	GroupSuffix     = "@g.us"
	UserSuffix      = "@s.whatsapp.net"
	StatusBroadcast = "status@broadcast"
)

// Message is a transport-neutral view of one inbound envelope.
type Message struct {
	ID          string
	ChatID      string
	Participant string
	PushName    string
	FromMe      bool
	Kind        ContentKind
	Text        string
	Caption     string
	Mentions    []string
	Quoted      Quoted
	Timestamp   time.Time
	// Raw holds the transport-native envelope for handlers that need it.
	Raw any
}

// Body returns the routable text of the message: plain or extended text, or the
// caption of an image or video.
func (m *Message) Body() string {
	switch m.Kind {
	case KindConversation, KindExtendedText:
		return m.Text
	case KindImage, KindVideo:
		return m.Caption
	default:
		return ""
	}
}

// Quoted references the message a reply points at. The zero value is the
// empty placeholder and means "nothing quoted".
type Quoted struct {
	ID          string
	Participant string
	Kind        ContentKind
	Text        string
}

func (q Quoted) Present() bool {
	return q.ID != "" || q.Kind != ""
}

// Trigger is the passive activation condition of a listener.
type Trigger string

const (
	TriggerBody    Trigger = "body"
	TriggerText    Trigger = "text"
	TriggerImage   Trigger = "image"
	TriggerSticker Trigger = "sticker"
)

// ParseTrigger maps a configured trigger name, accepting "photo" for images.
func ParseTrigger(s string) (Trigger, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "body":
		return TriggerBody, true
	case "text":
		return TriggerText, true
	case "image", "photo":
		return TriggerImage, true
	case "sticker":
		return TriggerSticker, true
	default:
		return "", false
	}
}

// Mode restricts who may reach the dispatcher.
type Mode string

const (
	ModePublic  Mode = "public"
	ModePrivate Mode = "private"
	ModeInbox   Mode = "inbox"
	ModeGroups  Mode = "groups"
)

// ParseMode falls back to public for unknown values.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModePrivate:
		return ModePrivate
	case ModeInbox:
		return ModeInbox
	case ModeGroups:
		return ModeGroups
	default:
		return ModePublic
	}
}

func (m Mode) Valid() bool {
	switch m {
	case ModePublic, ModePrivate, ModeInbox, ModeGroups:
		return true
	default:
		return false
	}
}

type Participant struct {
	ID      string
	IsAdmin bool
}

type GroupInfo struct {
	ID           string
	Subject      string
	Participants []Participant
}

// Admins lists the ids of all participants holding admin rights.
func (g GroupInfo) Admins() []string {
	admins := make([]string, 0)
	for _, p := range g.Participants {
		if p.IsAdmin {
			admins = append(admins, p.ID)
		}
	}

	return admins
}

type ReplyFunc func(ctx context.Context, text string) error

// DispatchContext carries the facts derived from one inbound message. It is
// built fresh per message and never shared.
type DispatchContext struct {
	Trace        string
	ChatID       string
	Sender       string
	SenderNumber string
	BotNumber    string
	BotJID       string
	PushName     string

	IsCommand bool
	Command   string
	Args      []string
	Query     string
	Body      string
	Kind      ContentKind
	Quoted    Quoted

	IsMe       bool
	IsOwner    bool
	IsGroup    bool
	IsAdmin    bool
	IsBotAdmin bool
	IsBanned   bool
	IsReaction bool

	GroupName    string
	Participants []Participant
	GroupAdmins  []string

	Reply ReplyFunc
}

// Media describes an outbound attachment referenced by URL.
type Media struct {
	Kind     ContentKind
	URL      string
	Caption  string
	Mimetype string
	FileName string
	Voice    bool
}

type Presence string

const (
	PresenceComposing Presence = "composing"
	PresenceRecording Presence = "recording"
	PresencePaused    Presence = "paused"
)

type UserRecord struct {
	ID           string
	Name         string
	Phone        string
	IsAdmin      bool
	IsPremium    bool
	Warns        int
	IsBanned     bool
	BannedReason string
	UpdatedAt    time.Time
}

type GroupRecord struct {
	ID        string
	Name      string
	Antilink  bool
	Antispam  bool
	Welcome   bool
	Goodbye   bool
	NSFW      bool
	IsBanned  bool
	UpdatedAt time.Time
}

// NumberOf strips the server and device parts of a jid.
func NumberOf(jid string) string {
	number, _, _ := strings.Cut(jid, "@")
	number, _, _ = strings.Cut(number, ":")

	return number
}
