// Package ssr post-processes rendered templates before they are sent to the browser.
package ssr

import (
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/surprise/internal/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// buttonClasses maps custom button elements to the classes of the native button they expand to.
var buttonClasses = map[string]string{
	"button-primary":   "btn btn-primary",
	"button-secondary": "btn btn-secondary",
}

// ExpandCustomElements reads HTML from reader, expands the custom elements and writes the result to writer.
//
// <button-primary> and <button-secondary> become <button> elements with the matching classes and type="submit"
// unless a type is given. Other elements can opt in to the classes with as="button-primary".
//
// When fragment is true only the children of <body> are written so that the output can be swapped into an
// existing page. Otherwise the whole document including the doctype is written.
func ExpandCustomElements(writer io.Writer, reader io.Reader, fragment bool) error {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return errors.Wrap(err, "parse html")
	}

	for tag, class := range buttonClasses {
		doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			node := s.Nodes[0]
			node.Data = atom.Button.String()
			node.DataAtom = atom.Button
			if _, ok := s.Attr("type"); !ok {
				s.SetAttr("type", "submit")
			}
			addClass(s, class)
		})
		doc.Find(`[as="` + tag + `"]`).Each(func(_ int, s *goquery.Selection) {
			s.RemoveAttr("as")
			addClass(s, class)
		})
	}

	if !fragment {
		for c := doc.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
			if err = html.Render(writer, c); err != nil {
				return errors.Wrap(err, "render document")
			}
		}
		return nil
	}

	body := doc.Find("body")
	if len(body.Nodes) == 0 {
		return nil
	}
	for c := body.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if err = html.Render(writer, c); err != nil {
			return errors.Wrap(err, "render fragment", slog.String("node", c.Data))
		}
	}
	return nil
}

// addClass appends class to the selection and collapses the whitespace goquery leaves between existing classes.
func addClass(s *goquery.Selection, class string) {
	s.AddClass(class)
	if current, ok := s.Attr("class"); ok {
		s.SetAttr("class", strings.Join(strings.Fields(current), " "))
	}
}
