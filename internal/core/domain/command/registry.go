package command

import (
	"context"
	"hyperbot/internal/core/domain"
	"hyperbot/internal/core/port"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Registry is an insertion-ordered table of descriptors. Writes take the lock; dispatch reads work on
// copies, so a concurrent override is last-write-wins.
type Registry struct {
	mu          sync.RWMutex
	descriptors []Descriptor
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register validates d and either replaces the first entry it overrides in place or appends it. The
// replaced descriptor is returned so callers can observe the override, including the case where an alias
// collision displaces an unrelated command.
func (r *Registry) Register(d Descriptor) (*Descriptor, bool) {
	if err := d.validate(); err != nil {
		log.Error().Err(err).
			Str("kind", d.Kind.String()).
			Str("name", d.Name).
			Str("trigger", string(d.Trigger)).
			Msg("rejecting command registration")
		return nil, false
	}

	d = d.normalize()

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.descriptors {
		if !d.overrides(existing) {
			continue
		}

		displaced := existing
		r.descriptors[i] = d
		log.Warn().
			Str("name", d.Name).
			Str("displaced", displaced.Name).
			Int("position", i).
			Msg("overriding registered command")

		return &displaced, true
	}

	r.descriptors = append(r.descriptors, d)
	log.Info().Str("kind", d.Kind.String()).Str("name", d.Name).Str("trigger", string(d.Trigger)).
		Msg("adding command handler to registry")

	return nil, true
}

// Lookup resolves an invocation token: the first explicit descriptor with that exact name, else the first
// one carrying it as an alias.
func (r *Registry) Lookup(token string) (Descriptor, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return Descriptor{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.descriptors {
		if d.Kind == Explicit && d.Name == token {
			return d, true
		}
	}

	for _, d := range r.descriptors {
		if d.Kind == Explicit && d.HasAlias(token) {
			return d, true
		}
	}

	return Descriptor{}, false
}

// Execute runs the command resolved from token. A miss and a failing handler both yield
// domain.ErrCommandNotFound; the failure itself is only logged.
func (r *Registry) Execute(ctx context.Context, token string, conn port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) error {
	d, ok := r.Lookup(token)
	if !ok {
		log.Debug().Str("command", token).Msg("no handler for command")
		return domain.ErrCommandNotFound
	}

	if err := d.Invoke(ctx, 0, conn, msg, dc); err != nil {
		log.Error().Err(err).Str("command", token).Msg("error executing command")
		return domain.ErrCommandNotFound
	}

	return nil
}

// Passive returns the passive descriptors in registration order.
func (r *Registry) Passive() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	passive := make([]Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		if d.Kind == Passive {
			passive = append(passive, d)
		}
	}

	return passive
}

// Snapshot returns a copy of all descriptors in registration order.
func (r *Registry) Snapshot() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)

	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.descriptors)
}

// ListCommands returns the names of all explicit commands in registration order.
func (r *Registry) ListCommands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		if d.Kind == Explicit {
			names = append(names, d.Name)
		}
	}

	return names
}
