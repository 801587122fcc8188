package push

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"splitter/internal/core"
)

func TestDispatchBatchesOneMessagePerToken(t *testing.T) {
	var got []Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q, want application/json", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("request body is not a JSON array: %v", err)
		}
		w.Write([]byte(`{"data":[{"status":"ok"},{"status":"ok"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	receipt, err := c.Dispatch(context.Background(),
		[]core.Token{"tokA", "tokB"}, "", "Alice added $90 for Dinner. Each owes $30.")
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("dispatched %d messages, want 2", len(got))
	}
	for i, tok := range []string{"tokA", "tokB"} {
		m := got[i]
		if m.To != tok || m.Sound != "default" || m.Title != DefaultTitle {
			t.Errorf("message %d = %+v", i, m)
		}
		if m.Body != "Alice added $90 for Dinner. Each owes $30." {
			t.Errorf("message %d body = %q", i, m.Body)
		}
	}

	if receipt.NoRecipients {
		t.Error("receipt should not be the no-recipients sentinel")
	}
	if string(receipt.Body) != `{"data":[{"status":"ok"},{"status":"ok"}]}` {
		t.Errorf("receipt body = %s, want verbatim gateway payload", receipt.Body)
	}
}

func TestDispatchZeroTokensSkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	receipt, err := c.Dispatch(context.Background(), nil, "", "msg")
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if called {
		t.Error("dispatch with zero tokens must not perform network I/O")
	}
	if !receipt.NoRecipients {
		t.Error("receipt should carry the no-recipients sentinel")
	}
	if string(receipt.Body) != `{"status": "no tokens"}` {
		t.Errorf("sentinel body = %s", receipt.Body)
	}
}

func TestDispatchGatewayErrorPayloadPassedThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"code":"PUSH_TOO_MANY_EXPERIENCE_IDS"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	receipt, err := c.Dispatch(context.Background(), []core.Token{"tokA"}, "", "msg")
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	// Gateway-level errors are part of the receipt, not a transport error.
	if string(receipt.Body) != `{"errors":[{"code":"PUSH_TOO_MANY_EXPERIENCE_IDS"}]}` {
		t.Errorf("receipt body = %s", receipt.Body)
	}
}

func TestDispatchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // force connection refused

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Dispatch(context.Background(), []core.Token{"tokA"}, "", "msg"); err == nil {
		t.Fatal("expected a transport error")
	}
}
