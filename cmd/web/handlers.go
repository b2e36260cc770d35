package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/myrjola/surprise/internal/errors"
	"github.com/myrjola/surprise/internal/wizard"
)

// maxUploadSize caps the selfie upload.
const maxUploadSize = 10 << 20

// home renders the active slide of the visitor.
func (app *application) home(w http.ResponseWriter, r *http.Request) {
	c := app.loadWizard(r.Context())
	app.render(w, r, http.StatusOK, false, newSlideTemplateData(c))
}

// advance applies the posted value of the active slide and moves forward when it validates.
func (app *application) advance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	c := app.loadWizard(ctx)
	field := c.Slide().Field
	if values, ok := r.PostForm[string(field)]; ok && isTextField(field) {
		c.Edit(field, values[0])
	}
	c.Advance(ctx)
	app.saveWizard(ctx, c)
	app.respond(w, r, c)
}

func (app *application) retreat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := app.loadWizard(ctx)
	c.Retreat()
	app.saveWizard(ctx, c)
	app.respond(w, r, c)
}

// edit stores a single field while the visitor types. The field name is posted in "field".
func (app *application) edit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	field := wizard.Field(r.PostForm.Get("field"))
	if !isTextField(field) {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	c := app.loadWizard(ctx)
	c.Edit(field, r.PostForm.Get(string(field)))
	app.saveWizard(ctx, c)
	app.respond(w, r, c)
}

// submit stores the uploaded selfie, if any, and submits the form.
func (app *application) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			app.clientError(w, r, http.StatusRequestEntityTooLarge)
			return
		}
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	c := app.loadWizard(ctx)
	selfie, err := readSelfie(r)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// Keep the selfie uploaded earlier, if any.
	case errors.Is(err, errNotAnImage):
		app.clientError(w, r, http.StatusUnsupportedMediaType)
		return
	case err != nil:
		app.serverError(w, r, errors.Wrap(err, "read selfie"))
		return
	default:
		c.EditSelfie(selfie)
	}

	c.Submit(ctx)
	app.saveWizard(ctx, c)
	app.respond(w, r, c)
}

// unlock checks the password candidate. The candidate itself is never logged.
func (app *application) unlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	c := app.loadWizard(ctx)
	if !c.Unlock(r.PostForm.Get("password")) {
		app.logger.LogAttrs(ctx, slog.LevelInfo, "unlock rejected", slog.Int("position", c.Position()))
	}
	app.saveWizard(ctx, c)
	app.respond(w, r, c)
}

// respond sends htmx requests the swapped slide and everyone else back to the page with a redirect.
func (app *application) respond(w http.ResponseWriter, r *http.Request, c *wizard.Controller) {
	if app.htmx.NewHandler(w, r).Request().HxRequest {
		app.render(w, r, http.StatusOK, true, newSlideTemplateData(c))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

var errNotAnImage = errors.NewSentinel("upload is not an image")

func readSelfie(r *http.Request) (*wizard.Selfie, error) {
	file, header, err := r.FormFile(string(wizard.FieldSelfie))
	if err != nil {
		return nil, errors.Wrap(err, "form file")
	}
	defer func() {
		_ = file.Close()
	}()

	var data bytes.Buffer
	if _, err = io.Copy(&data, io.LimitReader(file, maxUploadSize)); err != nil {
		return nil, errors.Wrap(err, "read upload")
	}
	if data.Len() == 0 {
		return nil, errors.Wrap(http.ErrMissingFile, "empty upload")
	}

	// The declared content type is not trusted.
	contentType := http.DetectContentType(data.Bytes())
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errors.Wrap(errNotAnImage, "check content type", slog.String("content_type", contentType))
	}
	return &wizard.Selfie{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data.Bytes(),
	}, nil
}

func isTextField(field wizard.Field) bool {
	for _, f := range wizard.TextFields {
		if f == field {
			return true
		}
	}
	return false
}
