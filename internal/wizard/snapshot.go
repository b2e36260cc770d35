package wizard

import (
	"log/slog"
	"time"
)

// Snapshot is the persistable state of a [Controller]. It is gob-encoded into the visitor's session.
//
// In-flight submission state is not part of a snapshot.
type Snapshot struct {
	Position   int
	Form       FormState
	Errors     map[Field]string
	ShakeUntil time.Time
}

// Snapshot captures the controller state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Position:   c.position,
		Form:       c.form,
		Errors:     c.errors.Clone(),
		ShakeUntil: c.shakeUntil,
	}
}

// Restore recreates a controller from snapshot. An out-of-range position starts over from the first slide.
func Restore(snapshot Snapshot, cfg Config, transport Transport, logger *slog.Logger) *Controller {
	c := New(cfg, transport, logger)
	if _, ok := SlideAt(snapshot.Position); !ok {
		return c
	}
	c.position = snapshot.Position
	c.form = snapshot.Form
	c.errors = Errors(snapshot.Errors).Clone()
	c.shakeUntil = snapshot.ShakeUntil
	return c
}
