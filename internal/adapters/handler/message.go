package handler

import (
	"context"
	"fmt"
	"hyperbot/internal/core/domain"
	"hyperbot/internal/core/port"
	"hyperbot/internal/core/service"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"go.mau.fi/whatsmeow/types/events"
)

type SettingsSource interface {
	Current(ctx context.Context) domain.Settings
}

type VoiceMatcher interface {
	Match(ctx context.Context, body string) []string
}

type Options struct {
	// WelcomeImage is sent with the connect notice to owners. Empty sends text only.
	WelcomeImage string
	// About is the profile text applied on connect when auto bio is enabled.
	About string
}

// Message runs every inbound message through the pipeline: status read, auto voice, owner react,
// command read receipts, mode gate, presence and finally dispatch.
type Message struct {
	conn       port.Transport
	classifier *service.Classifier
	dispatcher *service.Dispatcher
	settings   SettingsSource
	store      port.Store
	voices     VoiceMatcher
	opts       Options
	wg         conc.WaitGroup
}

func NewMessage(conn port.Transport, dispatcher *service.Dispatcher, settings SettingsSource, store port.Store,
	voices VoiceMatcher, opts Options) *Message {
	return &Message{
		conn:       conn,
		classifier: service.NewClassifier(conn),
		dispatcher: dispatcher,
		settings:   settings,
		store:      store,
		voices:     voices,
		opts:       opts,
	}
}

// EventHandler returns a whatsmeow event handler. Each event is processed in its own goroutine bound
// to ctx.
func (h *Message) EventHandler(ctx context.Context) func(any) {
	return func(evt any) {
		switch v := evt.(type) {
		case *events.Message:
			h.wg.Go(func() { h.Handle(ctx, v) })
		case *events.Connected:
			h.wg.Go(func() { h.Connected(ctx) })
		case *events.LoggedOut:
			log.Warn().Str("reason", v.Reason.String()).Msg("session logged out, pair again to continue")
		}
	}
}

// Wait blocks until every in-flight event finished.
func (h *Message) Wait() {
	h.wg.Wait()
}

func (h *Message) Handle(ctx context.Context, evt *events.Message) {
	msg, ok := Normalize(evt)
	if !ok {
		return
	}

	settings := h.settings.Current(ctx)
	l := log.With().Str("messageId", msg.ID).Str("chatId", msg.ChatID).Logger()

	if msg.ChatID == domain.StatusBroadcast {
		if settings.AutoReadStatus {
			if err := h.conn.MarkRead(ctx, msg); err != nil {
				l.Warn().Err(err).Msg("failed to read status")
			}
		}
		return
	}

	dc := h.classifier.Classify(ctx, msg, settings)
	l = l.With().Str("sender", dc.Sender).Str("trace", dc.Trace).Logger()
	l.Debug().Str("kind", string(msg.Kind)).Bool("isCommand", dc.IsCommand).Msg("received message")

	if settings.AutoVoice && h.voices != nil && !msg.FromMe {
		h.sendVoices(ctx, l, msg, dc.Body)
	}

	if settings.IsOwnerNumber(dc.SenderNumber) && !dc.IsReaction {
		for _, emoji := range settings.OwnerReact {
			if err := h.conn.React(ctx, msg, emoji); err != nil {
				l.Warn().Err(err).Msg("failed to send owner reaction")
				break
			}
		}
	}

	if dc.IsCommand {
		if settings.AutoReadCmd {
			if err := h.conn.MarkRead(ctx, msg); err != nil {
				l.Warn().Err(err).Msg("failed to read command")
			}
		}

		if h.store != nil {
			dc.IsBanned = h.store.GetUser(ctx, dc.Sender, dc.PushName).IsBanned
		}
	}

	if !service.Allow(dc.IsOwner, dc.IsGroup, settings.Mode) {
		l.Debug().Str("mode", string(settings.Mode)).Msg("message blocked by mode")
		return
	}

	if settings.AlwaysTyping {
		h.presence(ctx, l, msg.ChatID, domain.PresenceComposing)
	}
	if settings.AlwaysRecording {
		h.presence(ctx, l, msg.ChatID, domain.PresenceRecording)
	}

	report := h.dispatcher.Dispatch(ctx, h.conn, msg, dc)
	logReport(l, report)
}

func (h *Message) sendVoices(ctx context.Context, l zerolog.Logger, msg *domain.Message, body string) {
	for _, url := range h.voices.Match(ctx, body) {
		err := h.conn.SendMedia(ctx, msg.ChatID, domain.Media{
			Kind:     domain.KindAudio,
			URL:      url,
			Mimetype: "audio/mpeg",
			Voice:    true,
		}, msg)
		if err != nil {
			l.Warn().Err(err).Str("url", url).Msg("failed to send auto voice")
		}
	}
}

func (h *Message) presence(ctx context.Context, l zerolog.Logger, chatID string, presence domain.Presence) {
	if err := h.conn.SendPresence(ctx, chatID, presence); err != nil {
		l.Warn().Err(err).Str("presence", string(presence)).Msg("failed to send presence")
	}
}

func logReport(l zerolog.Logger, report service.Report) {
	if report.Explicit != nil {
		l.Debug().Str("command", report.Explicit.Name).Bool("ok", report.Explicit.OK()).Msg("explicit pass done")
	}

	failed := 0
	for _, r := range report.Passive {
		if !r.OK() {
			failed++
		}
	}

	if len(report.Passive) > 0 {
		l.Debug().Int("listeners", len(report.Passive)).Int("failed", failed).Msg("passive pass done")
	}
}

// Connected notifies every owner that the bot is online and refreshes the profile about text.
func (h *Message) Connected(ctx context.Context) {
	settings := h.settings.Current(ctx)
	log.Info().Str("self", h.conn.Self()).Msg("connected to WhatsApp")

	notice := welcomeNotice(settings)
	for _, number := range settings.OwnerNumbers {
		chatID := number + domain.UserSuffix

		if h.opts.WelcomeImage != "" {
			err := h.conn.SendMedia(ctx, chatID, domain.Media{
				Kind:    domain.KindImage,
				URL:     h.opts.WelcomeImage,
				Caption: notice,
			}, nil)
			if err == nil {
				continue
			}
			log.Warn().Err(err).Str("owner", number).Msg("failed to send welcome image, falling back to text")
		}

		if err := h.conn.SendText(ctx, chatID, notice, nil); err != nil {
			log.Error().Err(err).Str("owner", number).Msg("failed to send welcome message")
		}
	}

	if settings.AutoBio && h.opts.About != "" {
		if err := h.conn.SetAbout(ctx, h.opts.About); err != nil {
			log.Error().Err(err).Msg("failed to update profile about")
		}
	}
}

func welcomeNotice(settings domain.Settings) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🚀 %s Connected Successfully! ✅\n\n", settings.BotName)
	fmt.Fprintf(&sb, "🔹 PREFIX: %s\n", settings.Prefix)
	fmt.Fprintf(&sb, "🔹 MODE: %s\n", settings.Mode)
	owner := strings.Join(settings.OwnerNumbers, ", ")
	if settings.OwnerName != "" {
		owner = settings.OwnerName + " (" + owner + ")"
	}
	fmt.Fprintf(&sb, "🔹 OWNER: %s\n\n", owner)
	fmt.Fprintf(&sb, "Send %smenu to see what I can do.", settings.Prefix)

	return sb.String()
}
