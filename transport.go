package todoes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

// ErrStatusCode is the cause of a RequestError for a response whose status code is not 2xx.
var ErrStatusCode = errors.New("unhandled status code")

// Transport is what the client needs to talk to the backend. Paths are relative to a base URL the transport
// knows about. A non-nil out is filled by decoding the JSON response body, if there is one. Any failure,
// including a non-2xx response, must be returned as an error.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values, out interface{}) error
	Post(ctx context.Context, path string, in, out interface{}) error
	Put(ctx context.Context, path string, in, out interface{}) error
	Delete(ctx context.Context, path string, out interface{}) error
}

// RequestError is the only error type the default transport returns. The client doesn't look inside it, but
// error loggers might.
type RequestError struct {
	Method     string
	URL        string
	RequestID  string
	StatusCode int    // Zero if no response was received.
	Msg        string // What went wrong, or the response text for a non-2xx response.
	Cause      error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "%s %s", e.Method, e.URL)
	if e.StatusCode != 0 {
		_, _ = fmt.Fprintf(&b, ": %d", e.StatusCode)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Response texts longer than this are truncated in RequestError.Msg.
const maxErrorText = 256

// HTTPTransport implements Transport with net/http and JSON bodies.
type HTTPTransport struct {
	base   *url.URL
	client *http.Client

	// If non-nil, log all requests and responses to this writer, one per line, in JSON format.
	wlog io.Writer
	wmu  sync.Mutex
}

// NewHTTPTransport creates a transport resolving paths against baseURL, which must be absolute. A nil client
// means http.DefaultClient. A nil wlog disables the wire log.
func NewHTTPTransport(baseURL string, client *http.Client, wlog io.Writer) (*HTTPTransport, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("base url %q: %w", baseURL, ErrBaseURL)
	}
	// Without the trailing slash, the last path element would be replaced when resolving.
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{
		base:   base,
		client: client,
		wlog:   wlog,
	}, nil
}

// ErrBaseURL is returned when creating a transport with a base URL that is not absolute.
var ErrBaseURL = errors.New("base url must be absolute")

func (t *HTTPTransport) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return t.do(ctx, http.MethodGet, path, query, nil, out)
}

func (t *HTTPTransport) Post(ctx context.Context, path string, in, out interface{}) error {
	return t.do(ctx, http.MethodPost, path, nil, in, out)
}

func (t *HTTPTransport) Put(ctx context.Context, path string, in, out interface{}) error {
	return t.do(ctx, http.MethodPut, path, nil, in, out)
}

func (t *HTTPTransport) Delete(ctx context.Context, path string, out interface{}) error {
	return t.do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (t *HTTPTransport) do(ctx context.Context, method string, path string, query url.Values, in, out interface{}) error {
	u := t.base.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})
	rerr := &RequestError{
		Method:    method,
		URL:       u.String(),
		RequestID: newRequestID(),
	}
	var body io.Reader
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			rerr.Msg, rerr.Cause = "marshal", err
			return rerr
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rerr.URL, body)
	if err != nil {
		rerr.Msg, rerr.Cause = "new request", err
		return rerr
	}
	req.Header.Set("Accept", "application/json")
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}
	if rerr.RequestID != "" {
		req.Header.Set(requestIDHeader, rerr.RequestID)
	}
	t.wire(wireEntry{Type: "request", RequestID: rerr.RequestID, Method: method, URL: rerr.URL, Body: payload})
	r, err := t.client.Do(req)
	if err != nil {
		rerr.Msg, rerr.Cause = "send", err
		return rerr
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.WithFields(log.Fields{
				"method": method,
				"url":    rerr.URL,
				"cause":  err,
			}).Warning("Could not close response body")
		}
	}()
	b, err := io.ReadAll(r.Body)
	t.wire(wireEntry{Type: "response", RequestID: rerr.RequestID, Status: r.StatusCode, Body: b})
	rerr.StatusCode = r.StatusCode
	if err != nil {
		rerr.Msg, rerr.Cause = "read body", err
		return rerr
	}
	if r.StatusCode < 200 || r.StatusCode > 299 {
		text := strings.TrimSpace(string(b))
		if len(text) > maxErrorText {
			text = truncate(text, maxErrorText) + "..."
		}
		rerr.Msg, rerr.Cause = text, ErrStatusCode
		return rerr
	}
	if out == nil || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		rerr.Msg, rerr.Cause = "unmarshal", err
		return rerr
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

type wireEntry struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Method    string `json:"method,omitempty"`
	URL       string `json:"url,omitempty"`
	Status    int    `json:"status,omitempty"`

	// Raw bytes; embedded as is when valid JSON, as a string otherwise.
	Body []byte `json:"-"`
}

// MarshalJSON implements json.Marshaler.
func (e wireEntry) MarshalJSON() ([]byte, error) {
	type plain wireEntry
	b, err := json.Marshal(plain(e))
	if err != nil || len(e.Body) == 0 {
		return b, err
	}
	var body []byte
	if json.Valid(e.Body) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, e.Body); err != nil {
			return nil, err
		}
		body = buf.Bytes()
	} else if body, err = json.Marshal(string(e.Body)); err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(b[:len(b)-1])
	buf.WriteString(`,"body":`)
	buf.Write(body)
	buf.WriteRune('}')
	return buf.Bytes(), nil
}

func (t *HTTPTransport) wire(e wireEntry) {
	if t.wlog == nil {
		return
	}
	b, err := json.Marshal(e)
	if err != nil {
		log.WithField("cause", err).Warning("Could not marshal wire log entry")
		return
	}
	t.wmu.Lock()
	defer t.wmu.Unlock()
	_, _ = t.wlog.Write(append(b, '\n'))
}
