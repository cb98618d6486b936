package commands

import (
	"context"
	"fmt"
	"hyperbot/internal/core/domain"
	"hyperbot/internal/core/port"
	"hyperbot/internal/core/service"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	onlyOwner  = "This command can only be used by the bot owner."
	onlyGroup  = "This command can only be used in groups."
	onlyAdmins = "This command can only be used by group admins."
)

// SettingsWriter persists runtime setting overrides.
type SettingsWriter interface {
	Update(ctx context.Context, key, value string) error
}

type Mode struct {
	settings SettingsWriter
}

func NewMode(settings SettingsWriter) *Mode {
	return &Mode{settings: settings}
}

func (m *Mode) Respond(ctx context.Context, _ port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	if !dc.IsOwner {
		return dc.Reply(ctx, onlyOwner)
	}

	if len(dc.Args) == 0 {
		return dc.Reply(ctx, "Usage: mode <public|private|inbox|groups>")
	}

	mode := domain.Mode(strings.ToLower(dc.Args[0]))
	if !mode.Valid() {
		return dc.Reply(ctx, fmt.Sprintf("Unknown mode %q. Use public, private, inbox or groups.", dc.Args[0]))
	}

	if err := m.settings.Update(ctx, service.EnvMode, string(mode)); err != nil {
		return fmt.Errorf("updating mode: %w", err)
	}

	log.Info().Str("chatId", msg.ChatID).Str("mode", string(mode)).Msg("bot mode changed")

	return dc.Reply(ctx, fmt.Sprintf("✅ Bot mode set to *%s*", mode))
}

// GroupFlag identifies a per-group boolean a GroupToggle switches.
type GroupFlag string

const (
	FlagAntilink GroupFlag = "antilink"
	FlagAntispam GroupFlag = "antispam"
)

type GroupToggle struct {
	store port.Store
	flag  GroupFlag
}

func NewGroupToggle(store port.Store, flag GroupFlag) *GroupToggle {
	return &GroupToggle{store: store, flag: flag}
}

func (g *GroupToggle) Respond(ctx context.Context, _ port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	if !dc.IsGroup {
		return dc.Reply(ctx, onlyGroup)
	}

	if !dc.IsAdmin && !dc.IsOwner {
		return dc.Reply(ctx, onlyAdmins)
	}

	group := g.store.GetGroup(ctx, msg.ChatID, dc.GroupName)

	if len(dc.Args) == 0 {
		return dc.Reply(ctx, fmt.Sprintf("%s is %s. Usage: %s on|off", g.flag, onOff(g.value(group)), g.flag))
	}

	var enabled bool
	switch strings.ToLower(dc.Args[0]) {
	case "on", "enable":
		enabled = true
	case "off", "disable":
		enabled = false
	default:
		return dc.Reply(ctx, fmt.Sprintf("Usage: %s on|off", g.flag))
	}

	switch g.flag {
	case FlagAntilink:
		group.Antilink = enabled
	case FlagAntispam:
		group.Antispam = enabled
	}

	if err := g.store.UpdateGroup(ctx, group); err != nil {
		return fmt.Errorf("updating %s: %w", g.flag, err)
	}

	return dc.Reply(ctx, fmt.Sprintf("✅ %s is now %s", g.flag, onOff(enabled)))
}

func (g *GroupToggle) value(group domain.GroupRecord) bool {
	if g.flag == FlagAntispam {
		return group.Antispam
	}

	return group.Antilink
}

type Ban struct {
	store port.Store
	ban   bool
}

func NewBan(store port.Store) *Ban {
	return &Ban{store: store, ban: true}
}

func NewUnban(store port.Store) *Ban {
	return &Ban{store: store}
}

func (b *Ban) Respond(ctx context.Context, _ port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	if !dc.IsOwner {
		return dc.Reply(ctx, onlyOwner)
	}

	target, rest := banTarget(msg, dc)
	if target == "" {
		return dc.Reply(ctx, "Mention, quote or give the number of the user.")
	}

	number := domain.NumberOf(target)

	if !b.ban {
		if err := b.store.UnbanUser(ctx, target); err != nil {
			return fmt.Errorf("unbanning user: %w", err)
		}
		return dc.Reply(ctx, fmt.Sprintf("✅ %s has been unbanned", number))
	}

	if number == dc.BotNumber || number == dc.SenderNumber {
		return dc.Reply(ctx, "You cannot ban yourself or the bot.")
	}

	reason := strings.Join(rest, " ")
	if reason == "" {
		reason = "No reason provided"
	}

	if err := b.store.BanUser(ctx, target, reason); err != nil {
		return fmt.Errorf("banning user: %w", err)
	}

	return dc.Reply(ctx, fmt.Sprintf("🚫 %s has been banned: %s", number, reason))
}

type ResetWarn struct {
	store port.Store
}

func NewResetWarn(store port.Store) *ResetWarn {
	return &ResetWarn{store: store}
}

func (r *ResetWarn) Respond(ctx context.Context, _ port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	if !dc.IsOwner && !dc.IsAdmin {
		return dc.Reply(ctx, onlyAdmins)
	}

	target, _ := banTarget(msg, dc)
	if target == "" {
		return dc.Reply(ctx, "Mention, quote or give the number of the user.")
	}

	if err := r.store.ResetWarns(ctx, target); err != nil {
		return fmt.Errorf("resetting warns: %w", err)
	}

	log.Debug().Str("user", target).Msg("warns reset")

	return dc.Reply(ctx, fmt.Sprintf("✅ warnings of %s have been reset", domain.NumberOf(target)))
}

// banTarget picks the first mention, else the quoted author, else a number given as first argument. The
// remaining arguments are returned as the reason.
func banTarget(msg *domain.Message, dc *domain.DispatchContext) (string, []string) {
	args := dc.Args

	if len(msg.Mentions) > 0 {
		if len(args) > 0 && strings.HasPrefix(args[0], "@") {
			args = args[1:]
		}
		return msg.Mentions[0], args
	}

	if dc.Quoted.Present() && dc.Quoted.Participant != "" {
		return dc.Quoted.Participant, args
	}

	if len(args) > 0 {
		number := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, args[0])
		if number != "" {
			return number + domain.UserSuffix, args[1:]
		}
	}

	return "", nil
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}

	return "off"
}
