package commands

import (
	"context"
	"fmt"
	"hyperbot/internal/core/domain"
	"hyperbot/internal/core/domain/command"
	"hyperbot/internal/core/port"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Ping struct {
	now func() time.Time
}

func NewPing() *Ping {
	return &Ping{now: time.Now}
}

func (p *Ping) Respond(ctx context.Context, _ port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	if msg.Timestamp.IsZero() {
		return dc.Reply(ctx, "🏓 Pong!")
	}

	latency := p.now().Sub(msg.Timestamp)
	if latency < 0 {
		latency = 0
	}

	return dc.Reply(ctx, fmt.Sprintf("🏓 Pong! %dms", latency.Milliseconds()))
}

// Catalog lists registered descriptors for the menu.
type Catalog interface {
	Snapshot() []command.Descriptor
}

type Menu struct {
	catalog Catalog
	botName string
}

func NewMenu(catalog Catalog, botName string) *Menu {
	return &Menu{catalog: catalog, botName: botName}
}

const pluginCategory = "plugin"

// Respond lists explicit commands grouped by category, categories sorted by name. The prefix shown is the
// one the message was sent with.
func (m *Menu) Respond(ctx context.Context, _ port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	prefix := commandPrefix(dc.Body, dc.Command)

	groups := make(map[string][]command.Descriptor)
	for _, d := range m.catalog.Snapshot() {
		if d.Kind != command.Explicit || d.Meta.Category == pluginCategory {
			continue
		}
		category := d.Meta.Category
		if category == "" {
			category = "misc"
		}
		groups[category] = append(groups[category], d)
	}

	categories := make([]string, 0, len(groups))
	for category := range groups {
		categories = append(categories, category)
	}
	slices.Sort(categories)

	var b strings.Builder
	fmt.Fprintf(&b, "*%s Menu*\n\nHello %s 👋", m.botName, dc.PushName)

	for _, category := range categories {
		fmt.Fprintf(&b, "\n\n*%s*", strings.ToUpper(category))
		for _, d := range groups[category] {
			fmt.Fprintf(&b, "\n• %s%s", prefix, d.Name)
			if len(d.Aliases) > 0 {
				fmt.Fprintf(&b, " (%s)", strings.Join(d.Aliases, ", "))
			}
			if d.Meta.Description != "" {
				fmt.Fprintf(&b, " - %s", d.Meta.Description)
			}
		}
	}

	log.Debug().Str("chatId", msg.ChatID).Int("categories", len(categories)).Msg("sending menu")

	return dc.Reply(ctx, b.String())
}

// commandPrefix recovers the prefix from a body such as "!menu".
func commandPrefix(body, token string) string {
	lower := strings.ToLower(body)
	if i := strings.Index(lower, token); token != "" && i > 0 {
		return strings.TrimSpace(body[:i])
	}

	return ""
}
