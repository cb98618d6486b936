package service

import (
	"context"
	"hyperbot/internal/core/domain"
	"hyperbot/internal/core/domain/command"
	"hyperbot/internal/core/port"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

const errExecutingCommand = "Error executing command: "

// Catalog is the read side of the command registry the dispatcher consumes.
type Catalog interface {
	Lookup(token string) (command.Descriptor, bool)
	Passive() []command.Descriptor
}

type Result struct {
	Name    string
	Kind    command.Kind
	Trigger domain.Trigger
	Err     error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Report lists what fired for one message. Explicit is nil when no command matched.
type Report struct {
	Explicit *Result
	Passive  []Result
}

type Dispatcher struct {
	catalog Catalog
	timeout time.Duration
}

func NewDispatcher(catalog Catalog, timeout time.Duration) *Dispatcher {
	return &Dispatcher{catalog: catalog, timeout: timeout}
}

// Dispatch runs the explicit pass to completion, then every matching passive listener concurrently, and
// returns once all of them finished.
func (d *Dispatcher) Dispatch(ctx context.Context, conn port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) Report {
	l := log.With().
		Str("messageId", msg.ID).
		Str("chatId", msg.ChatID).
		Str("sender", dc.Sender).
		Str("trace", dc.Trace).
		Logger()

	report := Report{Explicit: d.explicit(ctx, l, conn, msg, dc)}
	report.Passive = d.passive(ctx, l, conn, msg, dc)

	return report
}

func (d *Dispatcher) explicit(ctx context.Context, l zerolog.Logger, conn port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) *Result {
	if !dc.IsCommand || dc.Command == "" {
		return nil
	}

	if dc.IsBanned {
		l.Debug().Str("command", dc.Command).Msg("ignoring command from banned user")
		return nil
	}

	desc, ok := d.catalog.Lookup(dc.Command)
	if !ok {
		l.Debug().Str("command", dc.Command).Msg("no handler for command")
		return nil
	}

	l = l.With().Str("command", desc.Name).Logger()

	if desc.Reaction != "" {
		if err := conn.React(ctx, msg, desc.Reaction); err != nil {
			l.Warn().Err(err).Str("reaction", desc.Reaction).Msg("failed to react to command")
		}
	}

	l.Debug().Msg("executing command")
	result := &Result{Name: desc.Name, Kind: command.Explicit}
	result.Err = desc.Invoke(ctx, d.timeout, conn, msg, dc)
	if result.Err == nil {
		return result
	}

	l.Error().Err(result.Err).Msg("error executing command")

	if dc.Reply != nil {
		if err := dc.Reply(ctx, errExecutingCommand+result.Err.Error()); err != nil {
			l.Error().Err(err).Msg("failed to report command failure")
		}
	}

	return result
}

func (d *Dispatcher) passive(ctx context.Context, l zerolog.Logger, conn port.Transport, msg *domain.Message,
	dc *domain.DispatchContext) []Result {
	matched := make([]command.Descriptor, 0)
	for _, desc := range d.catalog.Passive() {
		if desc.Matches(dc) {
			matched = append(matched, desc)
		}
	}

	results := make([]Result, len(matched))
	if len(matched) == 0 {
		return results
	}

	var wg conc.WaitGroup
	for i, desc := range matched {
		wg.Go(func() {
			err := desc.Invoke(ctx, d.timeout, conn, msg, dc)
			if err != nil {
				l.Error().Err(err).
					Str("listener", desc.Name).
					Str("trigger", string(desc.Trigger)).
					Msg("passive handler failed")
			}
			results[i] = Result{Name: desc.Name, Kind: command.Passive, Trigger: desc.Trigger, Err: err}
		})
	}
	wg.Wait()

	return results
}
