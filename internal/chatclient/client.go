// Package chatclient implements the widget side of the chat exchange:
// one JSON POST per message and a single conversion of its outcome into
// the text the widget shows.
package chatclient

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

	"supportbot/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrorText is the only failure message users ever see.
const ErrorText = "Error: Unable to connect to the server."

var (
	// ErrTransport covers building, sending, or reading the request.
	ErrTransport = errors.New("chat transport failed")
	// ErrDecode means the body was not valid JSON.
	ErrDecode = errors.New("chat response is not valid JSON")
	// ErrStatus is returned by Onboard and Health for non-2xx responses.
	ErrStatus = errors.New("unexpected HTTP status")
)

// Options configures a Client.
type Options struct {
	Endpoint   string
	BusinessID int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to the chat endpoint.
type Client struct {
	endpoint   string
	businessID int
	http       *http.Client
	logger     *zap.Logger
}

// New creates a client. A nil HTTPClient means an http.Client without a
// timeout; a nil Logger means no logging.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		endpoint:   opts.Endpoint,
		businessID: opts.BusinessID,
		http:       hc,
		logger:     logging.For(opts.Logger, logging.CategoryClient),
	}
}

// Send posts one message and decodes the reply. The HTTP status is not
// checked: any valid JSON body is a reply.
func (c *Client) Send(ctx context.Context, text string) (Response, error) {
	body, err := json.Marshal(Request{Message: text, BusinessID: c.businessID})
	if err != nil {
		return Response{}, fmt.Errorf("%w: encode request: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	if !json.Valid(data) {
		return Response{}, fmt.Errorf("%w: status %d, %d bytes", ErrDecode, resp.StatusCode, len(data))
	}
	return Response{Reply: replyText(data)}, nil
}

// replyText extracts the reply from a valid JSON body. A string reply is
// used as-is and any other reply value as its compact JSON text. A body that
// is not an object, or has no reply, yields "".
func replyText(data []byte) string {
	var body struct {
		Reply json.RawMessage `json:"reply"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	raw := bytes.TrimSpace(body.Reply)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// Do sends text and folds the outcome into a Result. Failures are logged
// with a correlation id; the caller only sees the Result.
func (c *Client) Do(ctx context.Context, text string) Result {
	id := uuid.NewString()
	c.logger.Debug("Sending message",
		zap.String("request_id", id),
		zap.String("endpoint", c.endpoint),
		zap.Int("business_id", c.businessID),
		zap.Int("length", len(text)))

	resp, err := c.Send(ctx, text)
	if err != nil {
		c.logger.Error("Chat request failed",
			zap.String("request_id", id),
			zap.String("endpoint", c.endpoint),
			zap.Error(err))
		return Result{Err: err}
	}

	c.logger.Debug("Reply received", zap.String("request_id", id), zap.Int("length", len(resp.Reply)))
	return Result{Reply: resp.Reply}
}

// BotText converts a Result into the bot message text. It is the only place
// an error turns into user-visible text, and it never includes the cause.
func BotText(r Result) string {
	if r.Err != nil {
		return ErrorText
	}
	return r.Reply
}

// Onboard registers a business with the service that hosts the chat endpoint.
func (c *Client) Onboard(ctx context.Context, in OnboardRequest) (OnboardResponse, error) {
	target, err := c.sibling("onboard")
	if err != nil {
		return OnboardResponse{}, err
	}

	body, err := json.Marshal(in)
	if err != nil {
		return OnboardResponse{}, fmt.Errorf("encode onboard request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return OnboardResponse{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return OnboardResponse{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return OnboardResponse{}, statusError(resp)
	}

	var out OnboardResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return OnboardResponse{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	c.logger.Info("Business onboarded", zap.Int64("business_id", out.BusinessID), zap.Int("faqs", len(in.FAQs)))
	return out, nil
}

// Health checks the root of the service hosting the chat endpoint.
func (c *Client) Health(ctx context.Context) error {
	target, err := c.sibling("")
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	return nil
}

// sibling replaces the last path segment of the chat endpoint.
// "http://h:8000/chat" -> "http://h:8000/onboard".
func (c *Client) sibling(name string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: invalid endpoint %q: %v", ErrTransport, c.endpoint, err)
	}
	p := strings.TrimSuffix(u.Path, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[:i]
	}
	u.Path = p + "/" + name
	u.RawQuery = ""
	return u.String(), nil
}

func statusError(resp *http.Response) error {
	var detail struct {
		Detail string `json:"detail"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &detail) == nil && detail.Detail != "" {
		return fmt.Errorf("%w: %d: %s", ErrStatus, resp.StatusCode, detail.Detail)
	}
	return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
}
