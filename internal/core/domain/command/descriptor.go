package command

import (
	"hyperbot/internal/core/domain"
	"hyperbot/internal/core/port"
	"slices"
	"strings"
)

// Kind tags which variant a Descriptor is.
type Kind uint8

const (
	// Explicit descriptors fire when a prefixed message names them or one of their aliases.
	Explicit Kind = iota + 1
	// Passive descriptors fire whenever their trigger condition holds.
	Passive
)

func (k Kind) String() string {
	switch k {
	case Explicit:
		return "explicit"
	case Passive:
		return "passive"
	default:
		return "invalid"
	}
}

// Meta is descriptive only and never consulted during dispatch.
type Meta struct {
	Description string
	Usage       string
	Category    string
}

type Descriptor struct {
	Kind     Kind
	Name     string
	Aliases  []string
	Trigger  domain.Trigger
	Reaction string
	Meta     Meta
	Handler  port.Handler
}

type Option func(*Descriptor)

func WithAliases(aliases ...string) Option {
	return func(d *Descriptor) {
		d.Aliases = append(d.Aliases, aliases...)
	}
}

func WithReaction(emoji string) Option {
	return func(d *Descriptor) {
		d.Reaction = emoji
	}
}

func WithMeta(description, usage, category string) Option {
	return func(d *Descriptor) {
		d.Meta = Meta{Description: description, Usage: usage, Category: category}
	}
}

// WithName labels a passive listener. Labelled listeners override each other like named commands.
func WithName(name string) Option {
	return func(d *Descriptor) {
		d.Name = name
	}
}

// NewCommand builds an explicit descriptor invoked as <prefix><name>.
func NewCommand(name string, handler port.Handler, opts ...Option) Descriptor {
	d := Descriptor{Kind: Explicit, Name: name, Handler: handler}
	for _, opt := range opts {
		opt(&d)
	}

	return d
}

// NewListener builds a passive descriptor fired by trigger.
func NewListener(trigger domain.Trigger, handler port.Handler, opts ...Option) Descriptor {
	d := Descriptor{Kind: Passive, Trigger: trigger, Handler: handler}
	for _, opt := range opts {
		opt(&d)
	}

	return d
}

func (d Descriptor) validate() error {
	if d.Handler == nil {
		return domain.ErrInvalidDescriptor
	}

	switch d.Kind {
	case Explicit:
		if strings.TrimSpace(d.Name) == "" {
			return domain.ErrInvalidDescriptor
		}
	case Passive:
		if _, ok := domain.ParseTrigger(string(d.Trigger)); !ok {
			return domain.ErrInvalidDescriptor
		}
	default:
		return domain.ErrInvalidDescriptor
	}

	return nil
}

// normalize lower-cases names and drops empty or repeated aliases. Passive listeners carry no aliases.
func (d Descriptor) normalize() Descriptor {
	d.Name = strings.ToLower(strings.TrimSpace(d.Name))

	if d.Kind == Passive {
		trigger, _ := domain.ParseTrigger(string(d.Trigger))
		d.Trigger = trigger
		d.Aliases = nil
		d.Reaction = ""
		return d
	}

	aliases := make([]string, 0, len(d.Aliases))
	for _, alias := range d.Aliases {
		alias = strings.ToLower(strings.TrimSpace(alias))
		if alias == "" || slices.Contains(aliases, alias) {
			continue
		}
		aliases = append(aliases, alias)
	}
	d.Aliases = aliases

	return d
}

func (d Descriptor) HasAlias(alias string) bool {
	return slices.Contains(d.Aliases, alias)
}

// Matches reports whether the trigger of a passive descriptor holds for the given facts.
func (d Descriptor) Matches(dc *domain.DispatchContext) bool {
	if d.Kind != Passive || dc == nil {
		return false
	}

	switch d.Trigger {
	case domain.TriggerBody:
		return dc.Body != ""
	case domain.TriggerText:
		return dc.Quoted.Present()
	case domain.TriggerImage:
		return dc.Kind == domain.KindImage
	case domain.TriggerSticker:
		return dc.Kind == domain.KindSticker
	default:
		return false
	}
}

// overrides reports whether registering d replaces existing.
func (d Descriptor) overrides(existing Descriptor) bool {
	if d.Kind != existing.Kind {
		return false
	}

	if d.Name != "" && d.Name == existing.Name {
		return true
	}

	for _, alias := range d.Aliases {
		if existing.HasAlias(alias) {
			return true
		}
	}

	return false
}
