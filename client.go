package todoes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// DefaultBaseURL is where the backend is expected when not configured otherwise with WithBaseURL.
const DefaultBaseURL = "http://localhost:8080/api/"

// The resource path, relative to the base URL.
const todoesPath = "todoes"

// ClientOption configures a Client, see NewClient.
type ClientOption func(*Client) error

// WithBaseURL sets the URL the todoes path is relative to, e.g., http://localhost:8080/api/ for todoes at
// http://localhost:8080/api/todoes. Ignored if WithTransport is also used.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) error {
		c.baseURL = baseURL
		return nil
	}
}

// WithHTTPClient sets the http.Client used by the default transport. Ignored if WithTransport is also used.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithWireLog is a client option to be passed to NewClient in order to log all requests and responses to the
// specified log file. Useful for debugging the client itself, shouldn't be needed in normal operation. Ignored if
// WithTransport is also used.
func WithWireLog(pathname string) ClientOption {
	return func(c *Client) error {
		f, err := os.OpenFile(pathname, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if err == nil {
			c.wlog = f
		}
		return err
	}
}

// WithWireLogWriter is like WithWireLog, but writes to w.
func WithWireLogWriter(w io.Writer) ClientOption {
	return func(c *Client) error {
		c.wlog = w
		return nil
	}
}

// WithTransport replaces the default HTTP transport altogether.
func WithTransport(t Transport) ClientOption {
	return func(c *Client) error {
		c.transport = t
		return nil
	}
}

// WithErrorLogger sets where swallowed failures are recorded. The default logs them with logrus.
func WithErrorLogger(l ErrorLogger) ClientOption {
	return func(c *Client) error {
		c.errors = l
		return nil
	}
}

// WithMetrics registers the client's Prometheus collectors with reg. Clients sharing a registry share the
// collectors too.
func WithMetrics(reg prometheus.Registerer) ClientOption {
	return func(c *Client) (err error) {
		c.metrics, err = newMetrics(reg)
		return err
	}
}

// Client issues the todoes operations. It keeps no state between calls and is safe for concurrent use.
type Client struct {
	transport Transport
	errors    ErrorLogger

	// Nil unless WithMetrics is used.
	metrics *metrics

	// Only used to build the default transport.
	baseURL    string
	httpClient *http.Client
	wlog       io.Writer
}

// NewClient creates a client. Without options, it talks to DefaultBaseURL with http.DefaultClient and logs
// failures with the standard logrus logger.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.transport == nil {
		t, err := NewHTTPTransport(c.baseURL, c.httpClient, c.wlog)
		if err != nil {
			return nil, err
		}
		c.transport = t
	}
	if c.errors == nil {
		c.errors = NewLogrusErrorLogger(nil)
	}
	return c, nil
}

// Todoes gets all todoes, in the order the server sends them.
func (c *Client) Todoes(ctx context.Context) []*Todo {
	return recovered(c, "getTodoes", noTodoes, func(ctx context.Context) ([]*Todo, error) {
		var todoes []*Todo
		err := c.transport.Get(ctx, todoesPath, nil, &todoes)
		return todoes, err
	})(ctx)
}

// TodoNo404 gets a todo by id using a filter query, so the server responds with an empty array rather than a
// 404 for an unknown id. Returns nil if not found.
func (c *Client) TodoNo404(ctx context.Context, id int64) *Todo {
	op := fmt.Sprintf("getTodo id=%d", id)
	return recovered(c, op, noTodo, func(ctx context.Context) (*Todo, error) {
		var todoes []*Todo
		query := url.Values{"id": {strconv.FormatInt(id, 10)}}
		if err := c.transport.Get(ctx, todoesPath+"/", query, &todoes); err != nil {
			return nil, err
		}
		var todo *Todo
		outcome := "did not find"
		if len(todoes) != 0 {
			todo = todoes[0]
			outcome = "fetched"
		}
		log.WithFields(log.Fields{
			"op":      op,
			"outcome": outcome,
		}).Debug("Lookup by filter")
		return todo, nil
	})(ctx)
}

// Todo gets a todo by id. The server will 404 if the id is not found, which this method can't tell apart from
// any other failure: it returns nil in both cases.
func (c *Client) Todo(ctx context.Context, id int64) *Todo {
	return recovered(c, fmt.Sprintf("getTodo id=%d", id), noTodo, func(ctx context.Context) (*Todo, error) {
		var todo *Todo
		err := c.transport.Get(ctx, todoPath(id), nil, &todo)
		return todo, err
	})(ctx)
}

// SearchTodoes gets the todoes whose name contains term, as decided by the server. A blank term returns an empty
// slice without making any request. The term is sent as is, not trimmed.
func (c *Client) SearchTodoes(ctx context.Context, term string) []*Todo {
	if strings.TrimSpace(term) == "" {
		c.metrics.observe("searchTodoes", outcomeSkipped, 0)
		return []*Todo{}
	}
	return recovered(c, "searchTodoes", noTodoes, func(ctx context.Context) ([]*Todo, error) {
		var todoes []*Todo
		err := c.transport.Get(ctx, todoesPath+"/", url.Values{"name": {term}}, &todoes)
		return todoes, err
	})(ctx)
}

// AddTodo creates a todo and returns it as created by the server, which assigns the id. Returns nil on failure.
func (c *Client) AddTodo(ctx context.Context, todo *Todo) *Todo {
	return recovered(c, "addTodo", noTodo, func(ctx context.Context) (*Todo, error) {
		var created *Todo
		err := c.transport.Post(ctx, todoesPath, todo, &created)
		return created, err
	})(ctx)
}

// DeleteTodo deletes the todo with the given id and returns whatever todo the server sends back, possibly nil.
// Returns nil on failure.
func (c *Client) DeleteTodo(ctx context.Context, id int64) *Todo {
	return recovered(c, "deleteTodo", noTodo, func(ctx context.Context) (*Todo, error) {
		var deleted *Todo
		err := c.transport.Delete(ctx, todoPath(id), &deleted)
		return deleted, err
	})(ctx)
}

// UpdateTodo replaces the todo having the same id. The response is returned undecoded since its shape is up to
// the server; it is nil on failure but can also be nil on success, e.g., on a 204.
func (c *Client) UpdateTodo(ctx context.Context, todo *Todo) json.RawMessage {
	return recovered(c, "updateTodo", noResponse, func(ctx context.Context) (json.RawMessage, error) {
		var response json.RawMessage
		err := c.transport.Put(ctx, todoesPath, todo, &response)
		return response, err
	})(ctx)
}

// logEntry is where the client's own diagnostics go: the entry of the error logger if it logs with logrus, so
// that its fields are carried over, the standard logger otherwise.
func (c *Client) logEntry() *log.Entry {
	if l, ok := c.errors.(*logrusErrorLogger); ok {
		return l.entry
	}
	return log.NewEntry(log.StandardLogger())
}

func todoPath(id int64) string {
	return todoesPath + "/" + strconv.FormatInt(id, 10)
}
