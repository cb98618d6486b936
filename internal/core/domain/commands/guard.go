package commands

import (
	"context"
	"errors"
	"fmt"
	"hyperbot/internal/core/domain"
	"hyperbot/internal/core/port"
	"hyperbot/internal/core/service"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

var inviteLinkPattern = regexp.MustCompile(`(?i)chat\.whatsapp\.com/[a-z0-9]+`)

// Antilink deletes group invite links posted by non-admins in groups that enabled it.
type Antilink struct {
	store port.Store
}

func NewAntilink(store port.Store) *Antilink {
	return &Antilink{store: store}
}

func (a *Antilink) Respond(ctx context.Context, conn port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	if !dc.IsGroup || dc.IsAdmin || dc.IsOwner || !inviteLinkPattern.MatchString(dc.Body) {
		return nil
	}

	if !a.store.GetGroup(ctx, msg.ChatID, dc.GroupName).Antilink {
		return nil
	}

	l := log.With().Str("chatId", msg.ChatID).Str("sender", dc.Sender).Logger()

	var errs []error
	if dc.IsBotAdmin {
		if err := conn.Revoke(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("deleting invite link: %w", err))
		}
	}

	warns := a.store.AddWarn(ctx, dc.Sender)
	l.Info().Int("warns", warns).Msg("group link removed")

	if err := dc.Reply(ctx, fmt.Sprintf("⚠️ @%s group links are not allowed here. Warning %d.",
		dc.SenderNumber, warns)); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Antispam warns senders exceeding the per-chat message rate in groups that enabled it.
type Antispam struct {
	store   port.Store
	tracker service.Tracker
}

func NewAntispam(store port.Store, tracker service.Tracker) *Antispam {
	return &Antispam{store: store, tracker: tracker}
}

func (a *Antispam) Respond(ctx context.Context, _ port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	if !dc.IsGroup || dc.IsAdmin || dc.IsOwner || dc.IsMe {
		return nil
	}

	if !a.store.GetGroup(ctx, msg.ChatID, dc.GroupName).Antispam {
		return nil
	}

	if a.tracker.Allow(msg.ChatID, dc.Sender) {
		return nil
	}

	warns := a.store.AddWarn(ctx, dc.Sender)
	log.Info().Str("chatId", msg.ChatID).Str("sender", dc.Sender).Int("warns", warns).Msg("spam detected")

	return dc.Reply(ctx, fmt.Sprintf("⚠️ @%s slow down, you are sending messages too fast. Warning %d.",
		dc.SenderNumber, warns))
}

var (
	statusKeywords = []string{"send", "dapan", "dapn", "ewhahn", "ewanna", "danna", "evano", "evpn", "ewano"}
	statusExcluded = []string{"tent", "docu", "https"}
)

// StatusSaver re-sends quoted images and videos when a reply asks for them.
type StatusSaver struct{}

func NewStatusSaver() *StatusSaver {
	return &StatusSaver{}
}

func (s *StatusSaver) Respond(ctx context.Context, conn port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	if !WantsStatus(dc.Body) {
		return nil
	}

	if dc.Quoted.Kind != domain.KindImage && dc.Quoted.Kind != domain.KindVideo {
		log.Debug().Str("kind", string(dc.Quoted.Kind)).Msg("unsupported media type")
		return nil
	}

	data, kind, err := conn.DownloadQuoted(ctx, msg)
	if err != nil {
		return fmt.Errorf("downloading quoted media: %w", err)
	}

	return conn.SendMediaBytes(ctx, msg.ChatID, kind, data, msg)
}

// WantsStatus reports whether body contains a request keyword and none of the excluded fragments.
func WantsStatus(body string) bool {
	lower := strings.ToLower(body)

	requested := false
	for _, word := range statusKeywords {
		if strings.Contains(lower, word) {
			requested = true
			break
		}
	}
	if !requested {
		return false
	}

	for _, word := range statusExcluded {
		if strings.Contains(body, word) {
			return false
		}
	}

	return true
}
