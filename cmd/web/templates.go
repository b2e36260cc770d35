package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/myrjola/surprise/internal/contexthelpers"
	"github.com/myrjola/surprise/internal/errors"
	"github.com/myrjola/surprise/internal/ssr"
	"github.com/myrjola/surprise/internal/wizard"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
)

// pages renders the wizard templates. The parsed set is never executed directly, every request works on a clone
// with its own nonce and CSRF functions.
type pages struct {
	templates  *template.Template
	minifier   *minify.M
	stylesheet []byte
}

func newPages(files fs.FS) (*pages, error) {
	// We need to initialize the FuncMap before parsing the files. These will be overridden in the render function.
	t, err := template.New("").Funcs(template.FuncMap{
		"nonce": func() template.HTMLAttr {
			panic("not implemented")
		},
		"csrf": func() template.HTML {
			panic("not implemented")
		},
		"csrfToken": func() string {
			panic("not implemented")
		},
	}).ParseFS(files, "templates/*.gohtml")
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}

	m := minify.New()
	m.Add("text/html", &html.Minifier{ //nolint:exhaustruct // other options are off
		KeepDefaultAttrVals: true,
		KeepDocumentTags:    true,
		KeepEndTags:         true,
		KeepQuotes:          true,
	})
	m.AddFunc("text/css", css.Minify)

	var stylesheet []byte
	if stylesheet, err = fs.ReadFile(files, "static/app.css"); err != nil {
		return nil, errors.Wrap(err, "read stylesheet")
	}
	if stylesheet, err = m.Bytes("text/css", stylesheet); err != nil {
		return nil, errors.Wrap(err, "minify stylesheet")
	}

	return &pages{templates: t, minifier: m, stylesheet: stylesheet}, nil
}

// slideTemplateData is what the slide templates see.
type slideTemplateData struct {
	Slide        wizard.Slide
	Paragraphs   []string
	Form         wizard.FormState
	Errors       wizard.Errors
	Progress     wizard.Progress
	ShowProgress bool
	Shaking      bool
	Submitting   bool
	CanRetreat   bool
	RevealDate   string
	NextLabel    string
	SelfieName   string
	Reasons      []wizard.ReasonOption
}

func newSlideTemplateData(c *wizard.Controller) slideTemplateData {
	slide := c.Slide()
	form := c.Form()
	progress, showProgress := c.Progress()

	nextLabel := "Next"
	switch slide.Index {
	case wizard.SlideWelcome:
		nextLabel = "Let's go"
	case wizard.SlideDisclaimer:
		nextLabel = "I accept"
	case wizard.SlideRequirements:
		nextLabel = "Continue"
	}

	var selfieName string
	if form.HasSelfie() {
		selfieName = form.Selfie.Filename
	}

	return slideTemplateData{
		Slide:        slide,
		Paragraphs:   paragraphs(slide.Text),
		Form:         form,
		Errors:       c.Errors(),
		Progress:     progress,
		ShowProgress: showProgress,
		Shaking:      c.Shaking(),
		Submitting:   c.Submitting(),
		CanRetreat:   slide.Index > wizard.FirstSlide && slide.Kind != wizard.KindTerminal,
		RevealDate:   c.RevealDate(),
		NextLabel:    nextLabel,
		SelfieName:   selfieName,
		Reasons:      wizard.ReasonOptions(),
	}
}

// paragraphs splits text into its non-empty lines.
func paragraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Value returns the entered text of field.
func (d slideTemplateData) Value(field wizard.Field) string {
	return d.Form.Value(field)
}

// Error returns the validation message of field or an empty string.
func (d slideTemplateData) Error(field wizard.Field) string {
	return d.Errors[field]
}

// render writes the page or, for fragments, only the active slide.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, fragment bool, data any) {
	name := "base"
	if fragment {
		name = "slide"
	}

	buf := new(bytes.Buffer)
	if err := app.pages.execute(buf, r, name, fragment, data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "render", slog.String("template", name)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (p *pages) execute(w io.Writer, r *http.Request, name string, fragment bool, data any) error {
	t, err := p.templates.Clone()
	if err != nil {
		return errors.Wrap(err, "clone templates")
	}

	ctx := r.Context()
	nonce := fmt.Sprintf("nonce=\"%s\"", contexthelpers.CSPNonce(ctx))
	csrfToken := contexthelpers.CSRFToken(ctx)
	csrf := fmt.Sprintf("<input type=\"hidden\" name=\"csrf_token\" value=\"%s\"/>", template.HTMLEscapeString(csrfToken))
	t.Funcs(template.FuncMap{
		"nonce": func() template.HTMLAttr {
			return template.HTMLAttr(nonce) //nolint:gosec // we trust the nonce since it's not provided by user.
		},
		"csrf": func() template.HTML {
			return template.HTML(csrf) //nolint:gosec // the token is escaped above.
		},
		"csrfToken": func() string {
			return csrfToken
		},
	})

	rendered := new(bytes.Buffer)
	if err = t.ExecuteTemplate(rendered, name, data); err != nil {
		return errors.Wrap(err, "execute template")
	}

	expanded := new(bytes.Buffer)
	if err = ssr.ExpandCustomElements(expanded, rendered, fragment); err != nil {
		return errors.Wrap(err, "expand custom elements")
	}

	if err = p.minifier.Minify("text/html", w, expanded); err != nil {
		return errors.Wrap(err, "minify")
	}
	return nil
}
