// Package sink delivers captured records to their destinations. Each
// destination implements Sink; a Dispatcher pairs a primary sink with a
// fallback policy so the per-flow wiring stays declarative: the notify flow
// runs Telegram with no fallback, prompt persistence runs PostgreSQL backed
// by a local file, output persistence runs PostgreSQL alone.
//
// The policy set is closed on purpose. Every delivery decision the flows make
// is one of these two variants, and a new destination tier should force a
// deliberate extension here rather than ad hoc branching in a flow.
package sink

import (
	"context"
	"log/slog"

	"github.com/dotcommander/claudesink/internal/models"
)

// Sink is one delivery destination.
type Sink interface {
	// Name identifies the sink in logs.
	Name() string
	// CheckConfig reports what configuration is still missing, nil when the
	// sink could attempt a delivery. It must be side-effect free: no network,
	// no files.
	CheckConfig() error
	// Deliver sends one record. Implementations bound their own I/O so a
	// caller is never parked indefinitely.
	Deliver(ctx context.Context, rec models.OutputRecord) error
}

// FallbackPolicy selects what a Dispatcher does when its primary sink is
// unconfigured or fails.
type FallbackPolicy int

const (
	// FallbackNone propagates the failure. The record is deliberately lost;
	// the next hook event produces the next attempt.
	FallbackNone FallbackPolicy = iota
	// FallbackFile redirects the record to the fallback sink, both when the
	// primary is unconfigured (no attempt is made at all) and when a
	// configured primary fails.
	FallbackFile
)

func (p FallbackPolicy) String() string {
	switch p {
	case FallbackFile:
		return "file"
	default:
		return "none"
	}
}

// Dispatcher routes one record according to its policy.
type Dispatcher struct {
	Primary  Sink
	Fallback Sink // consulted only under FallbackFile
	Policy   FallbackPolicy
}

// Dispatch delivers rec. Under FallbackNone any primary problem (missing
// configuration included) comes back as the error. Under FallbackFile an
// unconfigured primary is skipped without any connection attempt and the
// record goes straight to the fallback; a configured-but-failing primary is
// logged and the fallback takes over. Only a fallback failure is an error in
// that mode.
func (d Dispatcher) Dispatch(ctx context.Context, rec models.OutputRecord) error {
	if err := d.Primary.CheckConfig(); err != nil {
		if d.Policy == FallbackFile && d.Fallback != nil {
			slog.Info("primary sink unconfigured, using fallback",
				"primary", d.Primary.Name(), "fallback", d.Fallback.Name(), "reason", err.Error())
			return d.Fallback.Deliver(ctx, rec)
		}
		return err
	}

	if err := d.Primary.Deliver(ctx, rec); err != nil {
		if d.Policy == FallbackFile && d.Fallback != nil {
			slog.Warn("primary sink failed, using fallback",
				"primary", d.Primary.Name(), "fallback", d.Fallback.Name(), "error", err.Error())
			return d.Fallback.Deliver(ctx, rec)
		}
		return err
	}

	slog.Debug("record delivered", "sink", d.Primary.Name())
	return nil
}
