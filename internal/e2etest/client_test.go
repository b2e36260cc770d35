package e2etest_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/justinas/nosurf"
	"github.com/myrjola/surprise/internal/e2etest"
	"github.com/stretchr/testify/require"
)

const formPage = `<!DOCTYPE html><html><body>
<form action="/echo" method="post"><input type="hidden" name="csrf_token" value="token-123"></form>
</body></html>`

// newEchoServer serves formPage on / and describes what it received on /echo.
func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Secure: true}) //nolint:exhaustruct // test
		_, _ = io.WriteString(w, formPage)
	})
	mux.HandleFunc("POST /echo", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil && err != http.ErrNotMultipart {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var cookie string
		if c, err := r.Cookie("session"); err == nil {
			cookie = c.Value
		}
		var file string
		if f, header, err := r.FormFile("upload"); err == nil {
			data, _ := io.ReadAll(f)
			_ = f.Close()
			file = fmt.Sprintf("%s %s %s", header.Filename, header.Header.Get("Content-Type"), data)
		}
		_, _ = fmt.Fprintf(w, `<p id="csrf">%s</p><p id="header">%s</p><p id="hx">%s</p>`+
			`<p id="name">%s</p><p id="cookie">%s</p><p id="file">%s</p>`,
			r.FormValue("csrf_token"), r.Header.Get(nosurf.HeaderName), r.Header.Get("HX-Request"),
			r.FormValue("name"), cookie, file)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_SubmitForm(t *testing.T) {
	srv := newEchoServer(t)
	client, err := e2etest.NewClient(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	doc, err := client.SubmitForm(ctx, "/", "/echo", url.Values{"name": {"Ada"}})
	require.NoError(t, err)
	require.Equal(t, "token-123", doc.Find("#csrf").Text())
	require.Equal(t, "Ada", doc.Find("#name").Text())
	require.Equal(t, "abc", doc.Find("#cookie").Text(), "secure cookies are sent over plain HTTP")
}

func TestClient_SubmitMultipartForm(t *testing.T) {
	srv := newEchoServer(t)
	client, err := e2etest.NewClient(srv.URL)
	require.NoError(t, err)

	doc, err := client.SubmitMultipartForm(context.Background(), "/", "/echo", url.Values{"name": {"Ada"}},
		e2etest.File{Field: "upload", Filename: "me.png", ContentType: "image/png", Data: []byte("png")})
	require.NoError(t, err)
	require.Equal(t, "token-123", doc.Find("#csrf").Text())
	require.Equal(t, "Ada", doc.Find("#name").Text())
	require.Equal(t, "me.png image/png png", doc.Find("#file").Text())
}

func TestClient_PostHTMX(t *testing.T) {
	srv := newEchoServer(t)
	client, err := e2etest.NewClient(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	page, err := client.GetDoc(ctx, "/")
	require.NoError(t, err)
	token, err := client.CSRFToken(page, "/echo")
	require.NoError(t, err)

	doc, err := client.PostHTMX(ctx, "/echo", token, url.Values{"name": {"Ada"}})
	require.NoError(t, err)
	require.Equal(t, "token-123", doc.Find("#header").Text())
	require.Equal(t, "true", doc.Find("#hx").Text())
	require.Equal(t, "Ada", doc.Find("#name").Text())

	_, err = client.CSRFToken(page, "/missing")
	require.Error(t, err)
}

func TestClient_WaitForReady(t *testing.T) {
	srv := newEchoServer(t)
	client, err := e2etest.NewClient(srv.URL)
	require.NoError(t, err)
	require.NoError(t, client.WaitForReady(context.Background(), "/"))
	require.Error(t, client.WaitForReady(context.Background(), "/not-found"))
}
