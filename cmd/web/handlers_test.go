package main

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/surprise/internal/e2etest"
	"github.com/myrjola/surprise/internal/wizard"
	"github.com/stretchr/testify/require"
)

var pngSelfie = e2etest.File{
	Field:       "selfie",
	Filename:    "me.png",
	ContentType: "image/png",
	Data:        []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01"),
}

func title(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func advance(ctx context.Context, t *testing.T, client *e2etest.Client, values url.Values) *goquery.Document {
	t.Helper()
	doc, err := client.SubmitForm(ctx, "/", "/advance", values)
	require.NoError(t, err)
	return doc
}

// walkToSelfie fills in every slide up to the selfie upload.
func walkToSelfie(ctx context.Context, t *testing.T, client *e2etest.Client) {
	t.Helper()
	for range 3 {
		advance(ctx, t, client, nil)
	}
	advance(ctx, t, client, url.Values{"name": {"Ada"}})
	advance(ctx, t, client, url.Values{"contact": {"ada@example.com"}})
	advance(ctx, t, client, url.Values{"reason": {"timepass"}})
	advance(ctx, t, client, url.Values{"address": {"1 Analytical Engine Way"}})
	doc := advance(ctx, t, client, url.Values{"message": {""}})
	require.Equal(t, "Selfie", title(doc))
}

func Test_application_home(t *testing.T) {
	_, submitURL := newSubmitEndpoint(t)
	server := startTestServer(t, submitURL)
	ctx := context.Background()

	resp, err := server.Client().Get(ctx, "/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "Hey there", title(doc))
	require.Equal(t, 1, doc.Find("form[action='/advance'] button.btn-primary").Length())
	require.Equal(t, 0, doc.Find("form[action='/retreat']").Length(), "no way back from the first slide")
	require.Equal(t, 0, doc.Find(".progress").Length())

	nonce, ok := doc.Find("script").Attr("nonce")
	require.True(t, ok)
	require.Contains(t, resp.Header.Get("Content-Security-Policy"), "'nonce-"+nonce+"'")
}

func Test_application_walkThrough(t *testing.T) {
	endpoint, submitURL := newSubmitEndpoint(t)
	server := startTestServer(t, submitURL)
	client := server.Client()
	ctx := context.Background()

	doc := advance(ctx, t, client, nil)
	require.Equal(t, "Important Notice", title(doc))
	doc = advance(ctx, t, client, nil)
	require.Equal(t, "System Requirements", title(doc))
	require.Equal(t, "Step 2 of 8", strings.TrimSpace(doc.Find(".progress-label").Text()))
	doc = advance(ctx, t, client, nil)
	require.Equal(t, "Your Name", title(doc))

	// Whitespace is not a name.
	doc = advance(ctx, t, client, url.Values{"name": {"   "}})
	require.Equal(t, "Your Name", title(doc))
	require.Equal(t, wizard.MsgNameRequired, strings.TrimSpace(doc.Find(".error").Text()))

	doc = advance(ctx, t, client, url.Values{"name": {"Ada"}})
	require.Equal(t, "Contact", title(doc))
	doc = advance(ctx, t, client, url.Values{"contact": {"ada@example.com"}})
	require.Equal(t, "Why Did You Scan?", title(doc))
	require.Equal(t, "Step 5 of 8", strings.TrimSpace(doc.Find(".progress-label").Text()))
	require.Equal(t, len(wizard.ReasonOptions()), doc.Find("input[name=reason]").Length())

	doc = advance(ctx, t, client, nil)
	require.Equal(t, wizard.MsgReasonRequired, strings.TrimSpace(doc.Find(".error").Text()))
	doc = advance(ctx, t, client, url.Values{"reason": {"timepass"}})
	require.Equal(t, "Delivery Address", title(doc))
	doc = advance(ctx, t, client, url.Values{"address": {"1 Analytical Engine Way"}})
	require.Equal(t, "Message", title(doc))
	doc = advance(ctx, t, client, url.Values{"message": {""}})
	require.Equal(t, "Selfie", title(doc))

	// Submitting without a selfie is rejected.
	doc, err := client.SubmitMultipartForm(ctx, "/", "/submit", nil)
	require.NoError(t, err)
	require.Equal(t, "Selfie", title(doc))
	require.Equal(t, wizard.MsgSelfieRequired, strings.TrimSpace(doc.Find(".error").Text()))
	require.Empty(t, endpoint.submissions())

	doc, err = client.SubmitMultipartForm(ctx, "/", "/submit", nil, pngSelfie)
	require.NoError(t, err)
	require.Equal(t, "Secret Password", title(doc))

	submissions := endpoint.submissions()
	require.Len(t, submissions, 1)
	got := submissions[0]
	require.Equal(t, "Ada", got.Get("name"))
	require.Equal(t, "ada@example.com", got.Get("contact"))
	require.Equal(t, "timepass", got.Get("reason"))
	require.Equal(t, "1 Analytical Engine Way", got.Get("address"))
	require.Equal(t, "", got.Get("message"))
	require.True(t, strings.HasPrefix(got.Get("selfie"), "data:image/png;base64,"), got.Get("selfie"))

	doc, err = client.SubmitForm(ctx, "/", "/unlock", url.Values{"password": {"nicetomeetyou"}})
	require.NoError(t, err)
	require.Equal(t, "Secret Password", title(doc))
	require.Equal(t, wizard.MsgIncorrectPassword, strings.TrimSpace(doc.Find(".error").Text()))

	doc, err = client.SubmitForm(ctx, "/", "/unlock", url.Values{"password": {wizard.DefaultPassword}})
	require.NoError(t, err)
	require.Equal(t, "Date Revealed", title(doc))
	require.Equal(t, wizard.DefaultRevealDate, strings.TrimSpace(doc.Find(".reveal-date").Text()))
	require.Equal(t, 0, doc.Find("form").Length(), "the reveal slide is final")
	require.Len(t, endpoint.submissions(), 1)
}

func Test_application_retreat(t *testing.T) {
	_, submitURL := newSubmitEndpoint(t)
	server := startTestServer(t, submitURL)
	client := server.Client()
	ctx := context.Background()

	for range 3 {
		advance(ctx, t, client, nil)
	}
	doc := advance(ctx, t, client, url.Values{"name": {"Ada"}})
	require.Equal(t, "Contact", title(doc))

	doc, err := client.SubmitForm(ctx, "/", "/retreat", nil)
	require.NoError(t, err)
	require.Equal(t, "Your Name", title(doc))
	value, _ := doc.Find("input[name=name]").Attr("value")
	require.Equal(t, "Ada", value, "entered values survive going back")
}

func Test_application_htmx(t *testing.T) {
	_, submitURL := newSubmitEndpoint(t)
	server := startTestServer(t, submitURL)
	client := server.Client()
	ctx := context.Background()

	doc, err := client.GetDoc(ctx, "/")
	require.NoError(t, err)
	csrfToken, err := client.CSRFToken(doc, "/advance")
	require.NoError(t, err)

	fragment, err := client.PostHTMX(ctx, "/advance", csrfToken, nil)
	require.NoError(t, err)
	require.Equal(t, 0, fragment.Find("title").Length(), "htmx gets only the slide")
	require.Equal(t, 0, fragment.Find("main#wizard").Length(), "fragment is not wrapped in the page")
	require.Equal(t, 1, fragment.Find("section.slide-disclaimer").Length())
	require.Equal(t, 1, fragment.Find("button.btn-secondary").Length())

	for range 2 {
		_, err = client.PostHTMX(ctx, "/advance", csrfToken, nil)
		require.NoError(t, err)
	}
	fragment, err = client.PostHTMX(ctx, "/advance", csrfToken, nil)
	require.NoError(t, err)
	require.Equal(t, wizard.MsgNameRequired, strings.TrimSpace(fragment.Find(".error").Text()))

	t.Run("edit clears the error", func(t *testing.T) {
		fragment, err = client.PostHTMX(ctx, "/edit", csrfToken, url.Values{"field": {"name"}, "name": {"Ada"}})
		require.NoError(t, err)
		require.Equal(t, 0, fragment.Find(".error").Length())
		value, _ := fragment.Find("input[name=name]").Attr("value")
		require.Equal(t, "Ada", value)
	})

	t.Run("edit rejects unknown fields", func(t *testing.T) {
		_, err = client.PostHTMX(ctx, "/edit", csrfToken, url.Values{"field": {"password"}, "password": {"x"}})
		require.Error(t, err)
	})
}

func Test_application_wrongPasswordShakes(t *testing.T) {
	_, submitURL := newSubmitEndpoint(t)
	server := startTestServer(t, submitURL)
	client := server.Client()
	ctx := context.Background()

	walkToSelfie(ctx, t, client)
	doc, err := client.SubmitMultipartForm(ctx, "/", "/submit", nil, pngSelfie)
	require.NoError(t, err)
	csrfToken, err := client.CSRFToken(doc, "/unlock")
	require.NoError(t, err)

	fragment, err := client.PostHTMX(ctx, "/unlock", csrfToken, url.Values{"password": {"wrong"}})
	require.NoError(t, err)
	require.True(t, fragment.Find("input[name=password]").HasClass("animate-shake"))
	require.Equal(t, wizard.MsgIncorrectPassword, strings.TrimSpace(fragment.Find(".error").Text()))
}

func Test_application_submitRejectsNonImage(t *testing.T) {
	endpoint, submitURL := newSubmitEndpoint(t)
	server := startTestServer(t, submitURL)
	client := server.Client()
	ctx := context.Background()

	walkToSelfie(ctx, t, client)
	_, err := client.SubmitMultipartForm(ctx, "/", "/submit", nil, e2etest.File{
		Field:       "selfie",
		Filename:    "me.png",
		ContentType: "image/png",
		Data:        []byte("definitely not a picture"),
	})
	require.Error(t, err)
	require.Empty(t, endpoint.submissions())

	doc, err := client.GetDoc(ctx, "/")
	require.NoError(t, err)
	require.Equal(t, "Selfie", title(doc))
}

func Test_application_submissionFailureStillReachesPassword(t *testing.T) {
	server := startTestServer(t, unreachableURL(t))
	client := server.Client()
	ctx := context.Background()

	walkToSelfie(ctx, t, client)
	doc, err := client.SubmitMultipartForm(ctx, "/", "/submit", nil, pngSelfie)
	require.NoError(t, err)
	require.Equal(t, "Secret Password", title(doc))
}

func Test_application_sessionsAreSeparate(t *testing.T) {
	_, submitURL := newSubmitEndpoint(t)
	server := startTestServer(t, submitURL)
	ctx := context.Background()

	doc := advance(ctx, t, server.Client(), nil)
	require.Equal(t, "Important Notice", title(doc))

	other, err := server.NewClient()
	require.NoError(t, err)
	doc, err = other.GetDoc(ctx, "/")
	require.NoError(t, err)
	require.Equal(t, "Hey there", title(doc))
}

func Test_application_csrf(t *testing.T) {
	_, submitURL := newSubmitEndpoint(t)
	server := startTestServer(t, submitURL)

	resp, err := http.PostForm(server.URL()+"/advance", url.Values{})
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func Test_application_configuredPasswordAndRevealDate(t *testing.T) {
	_, submitURL := newSubmitEndpoint(t)
	lookupEnv := testLookupEnv(submitURL)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	server, err := e2etest.StartServer(ctx, io.Discard, func(key string) (string, bool) {
		switch key {
		case "SURPRISE_PASSWORD":
			return "open sesame", true
		case "SURPRISE_REVEAL_DATE":
			return "01/02/2027", true
		default:
			return lookupEnv(key)
		}
	}, run)
	require.NoError(t, err)
	client := server.Client()

	walkToSelfie(ctx, t, client)
	_, err = client.SubmitMultipartForm(ctx, "/", "/submit", nil, pngSelfie)
	require.NoError(t, err)

	doc, err := client.SubmitForm(ctx, "/", "/unlock", url.Values{"password": {wizard.DefaultPassword}})
	require.NoError(t, err)
	require.Equal(t, "Secret Password", title(doc))

	doc, err = client.SubmitForm(ctx, "/", "/unlock", url.Values{"password": {"open sesame"}})
	require.NoError(t, err)
	require.Contains(t, doc.Find(".reveal-date").Text(), "01/02/2027")
}
