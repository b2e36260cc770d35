package wizard

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/surprise/internal/errors"
)

const (
	DefaultPassword      = "Nicetomeetyou"
	DefaultRevealDate    = "25/01/2026"
	DefaultShakeDuration = 400 * time.Millisecond
)

// Transport delivers a submitted form. Its outcome never blocks the wizard.
type Transport interface {
	Send(ctx context.Context, payload Payload) error
}

// Config holds the values that used to be literals in the page.
type Config struct {
	// Password unlocks the gate slide. Compared byte for byte.
	Password string
	// RevealDate is shown verbatim on the terminal slide.
	RevealDate string
	// ShakeDuration is how long a failed unlock keeps the shake signal active.
	ShakeDuration time.Duration
	// Clock returns the current time. Defaults to [time.Now].
	Clock func() time.Time
}

// DefaultConfig returns the production password, reveal date and shake duration.
func DefaultConfig() Config {
	return Config{
		Password:      DefaultPassword,
		RevealDate:    DefaultRevealDate,
		ShakeDuration: DefaultShakeDuration,
		Clock:         nil,
	}
}

// WithOverrides returns a copy of c with the non-empty password and reveal date applied.
func (c Config) WithOverrides(password, revealDate string) Config {
	if password != "" {
		c.Password = password
	}
	if revealDate != "" {
		c.RevealDate = revealDate
	}
	return c
}

func (c Config) now() time.Time {
	if c.Clock == nil {
		return time.Now()
	}
	return c.Clock()
}

// Controller is the wizard state machine. Renderers read its state and call
// Advance, Retreat, Edit, Submit and Unlock; they never mutate state directly.
//
// A Controller is not safe for concurrent use. Each visitor session owns one.
type Controller struct {
	cfg       Config
	transport Transport
	logger    *slog.Logger

	position   int
	form       FormState
	errors     Errors
	submitting bool
	shakeUntil time.Time
}

// New creates a controller positioned on the welcome slide with an empty form.
func New(cfg Config, transport Transport, logger *slog.Logger) *Controller {
	return &Controller{
		cfg:        cfg,
		transport:  transport,
		logger:     logger,
		position:   FirstSlide,
		form:       FormState{},
		errors:     Errors{},
		submitting: false,
		shakeUntil: time.Time{},
	}
}

// Position returns the index of the active slide.
func (c *Controller) Position() int {
	return c.position
}

// Slide returns the active slide.
func (c *Controller) Slide() Slide {
	return slides[c.position]
}

// Form returns a copy of the entered values.
func (c *Controller) Form() FormState {
	return c.form
}

// Errors returns a copy of the current validation errors.
func (c *Controller) Errors() Errors {
	return c.errors.Clone()
}

// Submitting reports whether a submission is in flight.
func (c *Controller) Submitting() bool {
	return c.submitting
}

// Shaking reports whether the cosmetic shake signal from a failed unlock is still active.
func (c *Controller) Shaking() bool {
	return c.cfg.now().Before(c.shakeUntil)
}

// RevealDate returns the payload of the terminal slide.
func (c *Controller) RevealDate() string {
	return c.cfg.RevealDate
}

// Progress returns the step indicator for the active slide and whether it is shown.
func (c *Controller) Progress() (Progress, bool) {
	return progressAt(c.position)
}

// Advance validates the active slide and moves forward when it is valid.
//
// Advancing from the selfie slide submits the form. The gate and terminal slides can't be advanced from.
func (c *Controller) Advance(ctx context.Context) bool {
	switch c.Slide().Kind {
	case KindGate, KindTerminal:
		return false
	case KindSubmit:
		return c.Submit(ctx)
	case KindIntro, KindForm:
	}

	if !c.validate(ctx) {
		return false
	}
	if c.position < LastSlide {
		c.position++
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "advanced", slog.Int("position", c.position))
	return true
}

// Retreat moves back one slide without validation. It does nothing on the first and terminal slides.
func (c *Controller) Retreat() bool {
	if c.position <= FirstSlide || c.position == LastSlide {
		return false
	}
	c.position--
	return true
}

// Edit sets a text field and clears that field's error. Other errors are left untouched.
//
// Editing FieldPassword only clears the password error since the candidate is not kept.
func (c *Controller) Edit(field Field, value string) {
	switch field {
	case FieldName:
		c.form.Name = value
	case FieldContact:
		c.form.Contact = value
	case FieldReason:
		c.form.Reason = Reason(value)
	case FieldAddress:
		c.form.Address = value
	case FieldMessage:
		c.form.Message = value
	case FieldSelfie, FieldPassword:
	default:
		return
	}
	delete(c.errors, field)
}

// EditSelfie sets or, with nil, removes the uploaded image and clears the selfie error.
func (c *Controller) EditSelfie(selfie *Selfie) {
	c.form.Selfie = selfie
	delete(c.errors, FieldSelfie)
}

// Submit sends the form and moves to the password slide.
//
// The transport outcome is logged only: the visitor always reaches the password slide once the transport returns.
// Submit is rejected outside the selfie slide, while another submission is in flight and when the selfie is missing.
func (c *Controller) Submit(ctx context.Context) bool {
	if c.position != SlideSelfie {
		return false
	}
	if c.submitting {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "submission already in progress")
		return false
	}
	if !c.validate(ctx) {
		return false
	}

	c.submitting = true
	defer func() {
		c.submitting = false
	}()

	if err := c.transport.Send(ctx, Serialize(c.form)); err != nil {
		err = errors.Wrap(err, "send submission")
		c.logger.LogAttrs(ctx, slog.LevelError, "submission failed, continuing to password", errors.SlogError(err))
	} else {
		c.logger.LogAttrs(ctx, slog.LevelInfo, "submission sent")
	}

	c.position = SlidePassword
	return true
}

// Unlock compares candidate with the configured password and reveals the date on a match.
//
// A mismatch sets the password error and starts the shake signal.
func (c *Controller) Unlock(candidate string) bool {
	if c.position != SlidePassword {
		return false
	}
	if candidate != c.cfg.Password {
		c.errors[FieldPassword] = MsgIncorrectPassword
		c.shakeUntil = c.cfg.now().Add(c.cfg.ShakeDuration)
		return false
	}
	delete(c.errors, FieldPassword)
	c.shakeUntil = time.Time{}
	c.position = SlideReveal
	return true
}

// validate recomputes the errors of the active slide, replacing the previous ones.
func (c *Controller) validate(ctx context.Context) bool {
	c.errors = Validate(c.position, c.form)
	if len(c.errors) == 0 {
		return true
	}
	fields := make([]any, 0, len(c.errors))
	for field := range c.errors {
		fields = append(fields, string(field))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "validation failed",
		slog.Int("position", c.position), slog.Any("fields", fields))
	return false
}
