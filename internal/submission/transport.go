package submission

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/surprise/internal/errors"
	"github.com/myrjola/surprise/internal/wizard"
)

// DefaultTimeout bounds a submission when no HTTP client is given.
const DefaultTimeout = 30 * time.Second

// IDHeader carries the generated submission ID so that both ends can correlate logs.
const IDHeader = "X-Submission-ID"

// Transport posts submissions as multipart/form-data to a remote endpoint.
//
// Responses are fire-and-forget: the body is drained and the status code is only logged.
type Transport struct {
	client   *http.Client
	endpoint string
	logger   *slog.Logger
}

// NewTransport creates a Transport posting to endpoint. A nil client gets one with [DefaultTimeout].
func NewTransport(endpoint string, client *http.Client, logger *slog.Logger) *Transport {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout} //nolint:exhaustruct // defaults are fine
	}
	return &Transport{
		client:   client,
		endpoint: endpoint,
		logger:   logger,
	}
}

// Send posts payload. Only failures to deliver the request are returned.
func (t *Transport) Send(ctx context.Context, payload wizard.Payload) error {
	id := uuid.New().String()
	idAttr := slog.String("submission_id", id)

	body, contentType, err := encode(payload)
	if err != nil {
		return errors.Wrap(err, "encode payload", idAttr)
	}
	size := body.Len()

	var req *http.Request
	if req, err = http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, body); err != nil {
		return errors.Wrap(err, "create request", idAttr)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(IDHeader, id)

	start := time.Now()
	var resp *http.Response
	if resp, err = t.client.Do(req); err != nil {
		return errors.Wrap(err, "do request", idAttr)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	// Draining lets the connection be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	t.logger.LogAttrs(ctx, slog.LevelInfo, "posted submission",
		idAttr,
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", size),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// encode writes payload fields in order as a multipart form.
func encode(payload wizard.Payload) (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	for _, field := range payload.Fields() {
		if err := w.WriteField(field[0], field[1]); err != nil {
			return nil, "", errors.Wrap(err, "write field", slog.String("field", field[0]))
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close multipart writer")
	}
	return buf, w.FormDataContentType(), nil
}
