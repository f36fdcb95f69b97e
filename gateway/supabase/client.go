// Package supabase implements the backend gateway over Supabase's GoTrue
// auth API and the PostgREST profiles table. The client holds the single
// shared connection state for the process; it keeps no auth determination
// of its own beyond the raw session it last obtained.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/roadmapapp/go-auth-client/gateway"
	"github.com/roadmapapp/go-auth-client/session"
)

var _ gateway.Gateway = (*Client)(nil)

const eventBuffer = 32

// Client talks to one Supabase project.
type Client struct {
	baseURL string
	anonKey string
	httpc   *http.Client
	log     zerolog.Logger
	nowTime func() time.Time

	mu          sync.Mutex
	current     *session.Session
	subscribers map[int]chan gateway.Event
	nextSubID   int
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpc = httpc
	}
}

// WithClientLogger sets the logger for transport-level activity.
func WithClientLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ClientOption {
	return func(c *Client) {
		c.nowTime = nowFunc
	}
}

// NewClient creates a Client for the project at baseURL authenticated
// with the project's anon key.
func NewClient(baseURL, anonKey string, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[NewClient] baseURL is required")
	}
	if anonKey == "" {
		return nil, errors.New("[NewClient] anonKey is required")
	}

	client := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		anonKey:     anonKey,
		httpc:       &http.Client{Timeout: 10 * time.Second},
		log:         zerolog.Nop(),
		nowTime:     time.Now,
		subscribers: make(map[int]chan gateway.Event),
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

// newRequest builds a request with the project headers. bearer defaults
// to the anon key when empty.
func (c *Client) newRequest(ctx context.Context, method, path string, body any, bearer string) (*http.Request, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "[Client.newRequest] marshal body")
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.newRequest]")
	}

	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) currentLocked() *session.Session {
	if c.current == nil {
		return nil
	}
	sess := *c.current
	return &sess
}

func (c *Client) setCurrent(sess *session.Session) {
	c.mu.Lock()
	c.current = sess
	c.mu.Unlock()
}

// AuthEvents returns the client-side auth event feed. Events are emitted
// by the client's own operations (sign-in, sign-out, token refresh); the
// channel closes when ctx is cancelled.
func (c *Client) AuthEvents(ctx context.Context) <-chan gateway.Event {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	ch := make(chan gateway.Event, eventBuffer)
	c.subscribers[id] = ch
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subscribers[id]; ok {
			delete(c.subscribers, id)
			close(sub)
		}
	}()

	return ch
}

func (c *Client) emit(ev gateway.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, ch := range c.subscribers {
		select {
		case ch <- ev:
		default:
			c.log.Warn().Int("subscriber", id).Msg("auth event subscriber not keeping up, dropping event")
		}
	}
}
