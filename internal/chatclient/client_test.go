package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{Endpoint: srv.URL + "/chat", BusinessID: 3, HTTPClient: srv.Client()}), srv
}

func TestSend_RequestShape(t *testing.T) {
	var (
		gotBody   map[string]any
		gotMethod string
		gotType   string
		gotPath   string
	)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		_, _ = w.Write([]byte(`{"reply":"Hi there"}`))
	})

	resp, err := c.Send(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", resp.Reply)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "/chat", gotPath)

	want := map[string]any{"message": "Hello", "business_id": float64(3)}
	if diff := cmp.Diff(want, gotBody); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestSend_MessageSentVerbatim(t *testing.T) {
	var got Request
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"reply":"ok"}`))
	})

	msg := "  <b>spaces</b> \"quoted\" ünïcode  "
	_, err := c.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, msg, got.Message)
	assert.Equal(t, 3, got.BusinessID)
}

func TestDo(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr error
	}{
		{name: "reply", status: http.StatusOK, body: `{"reply":"Our hours are 9-5"}`, want: "Our hours are 9-5"},
		{name: "empty reply", status: http.StatusOK, body: `{"reply":""}`, want: ""},
		{name: "missing reply", status: http.StatusOK, body: `{"other":1}`, want: ""},
		{name: "error status with json body", status: http.StatusInternalServerError, body: `{"detail":"boom"}`, want: ""},
		{name: "error status with reply", status: http.StatusNotFound, body: `{"reply":"still shown"}`, want: "still shown"},
		{name: "numeric reply", status: http.StatusOK, body: `{"reply":42}`, want: "42"},
		{name: "object reply", status: http.StatusOK, body: `{"reply": {"a": [1, 2]}}`, want: `{"a":[1,2]}`},
		{name: "null reply", status: http.StatusOK, body: `{"reply":null}`, want: ""},
		{name: "array body", status: http.StatusOK, body: `[1,2]`, want: ""},
		{name: "string body", status: http.StatusOK, body: `"hi"`, want: ""},
		{name: "null body", status: http.StatusOK, body: `null`, want: ""},
		{name: "not json", status: http.StatusOK, body: `<html>oops</html>`, wantErr: ErrDecode},
		{name: "truncated json", status: http.StatusOK, body: `{"reply":"cut`, wantErr: ErrDecode},
		{name: "empty body", status: http.StatusBadGateway, body: ``, wantErr: ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			res := c.Do(context.Background(), "Hello")
			if tt.wantErr != nil {
				assert.ErrorIs(t, res.Err, tt.wantErr)
				assert.False(t, res.OK())
				assert.Equal(t, ErrorText, BotText(res))
				return
			}
			require.NoError(t, res.Err)
			assert.Equal(t, tt.want, BotText(res))
		})
	}
}

func TestDo_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Options{Endpoint: url + "/chat", BusinessID: 3})
	res := c.Do(context.Background(), "Hello")
	assert.ErrorIs(t, res.Err, ErrTransport)
	assert.Equal(t, ErrorText, BotText(res))
}

func TestDo_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := c.Do(ctx, "Hello")
	assert.ErrorIs(t, res.Err, ErrTransport)
	assert.Equal(t, ErrorText, BotText(res))
}

func TestBotText(t *testing.T) {
	assert.Equal(t, "hi", BotText(Result{Reply: "hi"}))
	assert.Equal(t, "", BotText(Result{}))
	assert.Equal(t, ErrorText, BotText(Result{Err: errors.New("dial tcp: refused")}))
	assert.Equal(t, ErrorText, BotText(Result{Reply: "ignored", Err: ErrDecode}))
}

func TestOnboard(t *testing.T) {
	var got OnboardRequest
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/onboard" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"message":"Business onboarded successfully","business_id":7}`))
	})

	in := OnboardRequest{
		Name:  "Acme",
		Email: "help@acme.test",
		FAQs:  []FAQItem{{Question: "Hours?", Answer: "9-5"}},
	}
	out, err := c.Onboard(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(7), out.BusinessID)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("onboard body mismatch (-want +got):\n%s", diff)
	}
}

func TestOnboard_StatusError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"name is required"}`))
	})

	_, err := c.Onboard(context.Background(), OnboardRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "name is required")
}

func TestHealth(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"message":"SupportBot API is running"}`))
	})
	assert.NoError(t, c.Health(context.Background()))

	bad, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	assert.ErrorIs(t, bad.Health(context.Background()), ErrStatus)
}

func TestSibling(t *testing.T) {
	tests := []struct {
		endpoint string
		name     string
		want     string
	}{
		{"http://localhost:8000/chat", "onboard", "http://localhost:8000/onboard"},
		{"http://localhost:8000/chat", "", "http://localhost:8000/"},
		{"http://h/api/v1/chat/", "onboard", "http://h/api/v1/onboard"},
		{"http://h/chat?x=1", "onboard", "http://h/onboard"},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint+"->"+tt.name, func(t *testing.T) {
			c := New(Options{Endpoint: tt.endpoint})
			got, err := c.sibling(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
