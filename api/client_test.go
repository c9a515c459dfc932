package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("got %s %s, want POST /auth/login", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("missing X-Request-Id header")
		}

		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["username"] != "alice" || payload["password"] != "secret" {
			t.Errorf("payload = %v", payload)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"user_id":      7,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.AccessToken != "tok-123" || result.UserID != 7 {
		t.Errorf("result = %+v", result)
	}
	if c.Token() != "tok-123" {
		t.Errorf("client token = %q, want tok-123", c.Token())
	}
}

func TestBearerTokenAttached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-456" {
			t.Errorf("Authorization = %q, want Bearer tok-456", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"sessions": []any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("tok-456")
	if _, err := c.Sessions(context.Background(), 1); err != nil {
		t.Fatalf("Sessions: %v", err)
	}
}

func TestErrorResponseBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "title too long"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.RenameSession(context.Background(), 3, "x")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	apiErr, ok := IsAPIError(err)
	if !ok {
		t.Fatalf("error %v is not an APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "title too long" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestTransportErrorIsNotAPIError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1") // nothing listens here
	err := c.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if _, ok := IsAPIError(err); ok {
		t.Errorf("transport failure classified as APIError: %v", err)
	}
}

func TestUnauthorizedFiresHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "token expired"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	var fired bool
	c.OnUnauthorized(func() { fired = true })

	_, err := c.Messages(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !fired {
		t.Error("OnUnauthorized hook not invoked on 401")
	}

	apiErr, ok := IsAPIError(err)
	if !ok || apiErr.Status != http.StatusUnauthorized {
		t.Errorf("err = %v, want 401 APIError", err)
	}
}

func TestSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/message/send" {
			t.Errorf("path = %s, want /message/send", r.URL.Path)
		}

		var payload struct {
			SessionID int64  `json:"session_id"`
			Content   string `json:"content"`
			Model     string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.SessionID != 12 || payload.Content != "hello" || payload.Model != "gpt-3.5-turbo" {
			t.Errorf("payload = %+v", payload)
		}

		json.NewEncoder(w).Encode(map[string]int64{"message_id": 41})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	id, err := c.SendMessage(context.Background(), 12, "hello", "gpt-3.5-turbo")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if id != 41 {
		t.Errorf("message id = %d, want 41", id)
	}
}

func TestMessageUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/message/12/updates" {
			t.Errorf("path = %s, want /message/12/updates", r.URL.Path)
		}
		if got := r.URL.Query().Get("last_message_id"); got != "41" {
			t.Errorf("last_message_id = %q, want 41", got)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]any{
				{"id": 42, "content": "Hel", "status": "streaming"},
				{"id": 42, "content": "lo!", "status": "completed"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	fragments, err := c.MessageUpdates(context.Background(), 12, 41)
	if err != nil {
		t.Fatalf("MessageUpdates: %v", err)
	}
	if len(fragments) != 2 {
		t.Fatalf("got %d fragments, want 2", len(fragments))
	}
	if fragments[0].Content != "Hel" || fragments[0].Status != StatusStreaming {
		t.Errorf("fragments[0] = %+v", fragments[0])
	}
	if fragments[1].Content != "lo!" || fragments[1].Status != StatusCompleted {
		t.Errorf("fragments[1] = %+v", fragments[1])
	}
}
