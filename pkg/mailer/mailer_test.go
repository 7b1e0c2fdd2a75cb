package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	contractx "github.com/bkocaman/supplypilot/agent/contract"
)

func TestNewClientRejectsBadURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{URL: "not a url"}); err == nil {
		t.Fatal("invalid relay url must be rejected")
	}
}

func TestDeliverSimulatedMode(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := c.Deliver(context.Background(), contractx.Notice{
		Recipient: "executive@enterprise.com",
		Subject:   "s",
		Body:      "b",
	}); err != nil {
		t.Fatalf("simulated delivery must succeed: %v", err)
	}
}

func TestDeliverPostsToRelay(t *testing.T) {
	t.Parallel()

	var got contractx.Notice
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(Config{URL: srv.URL, Token: "secret"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	notice := contractx.Notice{
		Recipient: "executive@enterprise.com",
		Subject:   "Restock placed",
		Body:      "PO12345 on its way.",
	}
	if err := c.Deliver(context.Background(), notice); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if got != notice {
		t.Fatalf("relay received %+v, want %+v", got, notice)
	}
	if auth != "Bearer secret" {
		t.Fatalf("unexpected auth header: %q", auth)
	}
}

func TestDeliverRelayFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(Config{URL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := c.Deliver(context.Background(), contractx.Notice{Subject: "s", Body: "b"}); err == nil {
		t.Fatal("non-2xx relay response must fail delivery")
	}
}
