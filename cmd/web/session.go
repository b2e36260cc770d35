package main

import (
	"context"
	"log/slog"

	"github.com/myrjola/surprise/internal/wizard"
)

type sessionKey string

// wizardSessionKey holds the gob-encoded [wizard.Snapshot] of the visitor.
const wizardSessionKey = sessionKey("wizard")

// loadWizard restores the visitor's controller or starts a new one on the welcome slide.
func (app *application) loadWizard(ctx context.Context) *wizard.Controller {
	snapshot, ok := app.sessionManager.Get(ctx, string(wizardSessionKey)).(wizard.Snapshot)
	if !ok {
		return wizard.New(app.wizardConfig, app.transport, app.logger)
	}
	return wizard.Restore(snapshot, app.wizardConfig, app.transport, app.logger)
}

// saveWizard stores the controller state in the visitor's session.
func (app *application) saveWizard(ctx context.Context, c *wizard.Controller) {
	app.sessionManager.Put(ctx, string(wizardSessionKey), c.Snapshot())
	app.logger.LogAttrs(ctx, slog.LevelDebug, "saved wizard", slog.Int("position", c.Position()))
}
