package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/surprise/internal/e2etest"
	"github.com/myrjola/surprise/internal/errors"
	"github.com/myrjola/surprise/internal/logging"
)

// TestWizard walks the intro slides, checks that an empty name is rejected and steps back.
// It never submits so that no test data reaches the submission endpoint.
func TestWizard(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	var (
		doc *goquery.Document
		err error
	)
	if doc, err = client.GetDoc(ctx, "/"); err != nil {
		return errors.Wrap(err, "get front page")
	}
	if got := title(doc); got != "Hey there" {
		return errors.New("unexpected first slide", slog.String("title", got))
	}

	for range 3 {
		if doc, err = client.SubmitForm(ctx, "/", "/advance", nil); err != nil {
			return errors.Wrap(err, "advance intro")
		}
	}
	if got := title(doc); got != "Your Name" {
		return errors.New("unexpected slide after intro", slog.String("title", got))
	}

	if doc, err = client.SubmitForm(ctx, "/", "/advance", url.Values{"name": {""}}); err != nil {
		return errors.Wrap(err, "advance with empty name")
	}
	if doc.Find(".error").Length() == 0 {
		return errors.New("empty name was accepted", slog.String("title", title(doc)))
	}

	if doc, err = client.SubmitForm(ctx, "/", "/retreat", nil); err != nil {
		return errors.Wrap(err, "retreat")
	}
	if got := title(doc); got != "System Requirements" {
		return errors.New("unexpected slide after retreat", slog.String("title", got))
	}
	return nil
}

func title(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func main() {
	logger := logging.NewLogger(os.Stdout, slog.LevelDebug, false)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		baseURL  = "https://" + hostname
		client   *e2etest.Client
		err      error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", baseURL))

	if client, err = e2etest.NewClient(baseURL); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestWizard(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing wizard", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
