package e2etest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	neturl "net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/justinas/nosurf"
	"github.com/myrjola/surprise/internal/errors"
)

type Client struct {
	client *http.Client
	url    string
}

// File is a file attached to a multipart form submission.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// NewClient creates an HTTP client with a cookie jar that keeps the session and CSRF cookies.
func NewClient(url string) (*Client, error) {
	jar, err := newUnsafeCookieJar()
	if err != nil {
		return nil, errors.Wrap(err, "create unsafe cookie jar")
	}
	return &Client{
		client: &http.Client{Jar: jar}, //nolint:exhaustruct // defaults are fine
		url:    url,
	}, nil
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	if req, err = c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil); err != nil {
		return nil, errors.Wrap(err, "create request with context")
	}
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// GetDoc fetches a URL and returns a goquery document.
func (c *Client) GetDoc(ctx context.Context, urlPath string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, urlPath)
	if err != nil {
		return nil, errors.Wrap(err, "client get")
	}
	return parseDoc(resp)
}

// SubmitForm fetches the page at formURLPath, copies the CSRF token of the form posting to formActionURLPath and
// submits it with values. Redirects are followed and the final document is returned.
func (c *Client) SubmitForm(
	ctx context.Context,
	formURLPath string,
	formActionURLPath string,
	values neturl.Values,
) (*goquery.Document, error) {
	csrfToken, err := c.csrfTokenFor(ctx, formURLPath, formActionURLPath)
	if err != nil {
		return nil, err
	}

	formData := neturl.Values{}
	for key, vals := range values {
		formData[key] = append([]string(nil), vals...)
	}
	formData.Set("csrf_token", csrfToken)

	var req *http.Request
	if req, err = c.newRequestWithContext(
		ctx,
		http.MethodPost,
		formActionURLPath,
		strings.NewReader(formData.Encode()),
	); err != nil {
		return nil, errors.Wrap(err, "new request with context")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.doDoc(req)
}

// SubmitMultipartForm works like [Client.SubmitForm] but encodes the values and files as multipart/form-data.
func (c *Client) SubmitMultipartForm(
	ctx context.Context,
	formURLPath string,
	formActionURLPath string,
	values neturl.Values,
	files ...File,
) (*goquery.Document, error) {
	csrfToken, err := c.csrfTokenFor(ctx, formURLPath, formActionURLPath)
	if err != nil {
		return nil, err
	}

	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	if err = w.WriteField("csrf_token", csrfToken); err != nil {
		return nil, errors.Wrap(err, "write csrf token")
	}
	for key, vals := range values {
		for _, val := range vals {
			if err = w.WriteField(key, val); err != nil {
				return nil, errors.Wrap(err, "write field", slog.String("field", key))
			}
		}
	}
	for _, file := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Filename))
		header.Set("Content-Type", file.ContentType)
		var part io.Writer
		if part, err = w.CreatePart(header); err != nil {
			return nil, errors.Wrap(err, "create part", slog.String("field", file.Field))
		}
		if _, err = part.Write(file.Data); err != nil {
			return nil, errors.Wrap(err, "write part", slog.String("field", file.Field))
		}
	}
	if err = w.Close(); err != nil {
		return nil, errors.Wrap(err, "close multipart writer")
	}

	var req *http.Request
	if req, err = c.newRequestWithContext(ctx, http.MethodPost, formActionURLPath, body); err != nil {
		return nil, errors.Wrap(err, "new request with context")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.doDoc(req)
}

// PostHTMX posts values the way htmx does: with the HX-Request header and the CSRF token in a header.
// The returned document holds the swapped fragment.
func (c *Client) PostHTMX(
	ctx context.Context,
	urlPath string,
	csrfToken string,
	values neturl.Values,
) (*goquery.Document, error) {
	req, err := c.newRequestWithContext(ctx, http.MethodPost, urlPath, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "new request with context")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	req.Header.Set(nosurf.HeaderName, csrfToken)
	return c.doDoc(req)
}

// CSRFToken returns the token of the first form in doc posting to formActionURLPath.
func (c *Client) CSRFToken(doc *goquery.Document, formActionURLPath string) (string, error) {
	return c.extractCSRFToken(doc, formActionURLPath)
}

func (c *Client) csrfTokenFor(ctx context.Context, formURLPath, formActionURLPath string) (string, error) {
	doc, err := c.GetDoc(ctx, formURLPath)
	if err != nil {
		return "", errors.Wrap(err, "get document")
	}
	var csrfToken string
	if csrfToken, err = c.extractCSRFToken(doc, formActionURLPath); err != nil {
		return "", errors.Wrap(err, "extract CSRF token")
	}
	return csrfToken, nil
}

func (c *Client) extractCSRFToken(doc *goquery.Document, formActionURLPath string) (string, error) {
	formSelector := fmt.Sprintf("form[action='%s']", formActionURLPath)
	form := doc.Find(formSelector).First()
	csrfToken, ok := form.Find("input[name=csrf_token]").Attr("value")
	if !ok {
		return "", errors.New("csrf_token not found in form", slog.String("form", formSelector))
	}
	return csrfToken, nil
}

func (c *Client) doDoc(req *http.Request) (*goquery.Document, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return parseDoc(resp)
}

// newRequestWithContext creates a new HTTP request to the server that respects the given context.
func (c *Client) newRequestWithContext(
	ctx context.Context,
	method, urlPath string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	return req, nil
}

func parseDoc(resp *http.Response) (*goquery.Document, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	if http.StatusOK != resp.StatusCode {
		return nil, errors.New("unexpected status code", slog.Int("status", resp.StatusCode))
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "create document from reader")
	}
	return doc, nil
}
