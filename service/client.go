package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// APIError is a failure reported by the service.  Message is the
// service's error text, surfaced as is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// HTTP talks to the feature-extraction and wake-word service.
type HTTP struct {
	c    *http.Client
	base string
	log  logrus.FieldLogger
}

// NewHTTP returns a client for the service at base, e.g.
// http://localhost:8000.
func NewHTTP(base string, timeout time.Duration, log logrus.FieldLogger) *HTTP {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HTTP{
		c:    &http.Client{Timeout: timeout},
		base: strings.TrimRight(base, "/"),
		log:  log,
	}
}

// upload posts a multipart form with the audio under "file" plus extra
// text fields.
func (h *HTTP) upload(ctx context.Context, path, filename string, audio []byte, fields map[string]string) (*http.Response, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err = fw.Write(audio); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.base+path, &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	h.log.WithFields(logrus.Fields{"path": path, "file": filename, "bytes": len(audio)}).Debug("service upload")
	return h.c.Do(req)
}

// get issues a GET against the service.
func (h *HTTP) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.base+path, nil)
	if err != nil {
		return nil, err
	}
	h.log.WithField("path", path).Debug("service get")
	return h.c.Do(req)
}

// errorBody is the service's failure shape.
type errorBody struct {
	Error string `json:"error"`
}

// decode reads a JSON body into out.  Non-2xx statuses become an APIError
// carrying the service's error text, or the raw body when it is not JSON.
func decode(op string, resp *http.Response, out any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s read: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: eb.Error}
		}
		return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("%s %s: %s", op, resp.Status, strings.TrimSpace(string(body)))}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s decode: %w", op, err)
	}
	return nil
}
