package model

import (
	"testing"

	"aitui/api"
)

func TestGenerateSessionTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "short message kept as-is",
			input: "Hello there",
			want:  "Hello there",
		},
		{
			name:  "long message truncated to 20 chars with ellipsis",
			input: "Explain the difference between channels and mutexes",
			want:  "Explain the differen...",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  hi  ",
			want:  "hi",
		},
		{
			name:  "newlines flattened",
			input: "line one\nline two",
			want:  "line one line two",
		},
		{
			name:  "multibyte runes counted as one",
			input: "日本語のとても長いメッセージをここに書きます",
			want:  "日本語のとても長いメッセージをここに書き...",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateSessionTitle(tt.input); got != tt.want {
				t.Errorf("GenerateSessionTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMessageTerminal(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{api.StatusPending, false},
		{api.StatusStreaming, false},
		{api.StatusCompleted, true},
		{api.StatusFailed, true},
	}

	for _, tt := range tests {
		m := Message{Status: tt.status}
		if got := m.Terminal(); got != tt.want {
			t.Errorf("Terminal() with status %q = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestFromAPIMessagesPreservesOrder(t *testing.T) {
	in := []api.Message{
		{ID: 1, Role: "user", Content: "q"},
		{ID: 2, Role: "assistant", Content: "a", Status: api.StatusCompleted},
	}

	out := FromAPIMessages(in)
	if len(out) != 2 {
		t.Fatalf("got %d messages, want 2", len(out))
	}
	if out[0].ID != 1 || out[0].Role != "user" {
		t.Errorf("out[0] = %+v", out[0])
	}
	if out[1].ID != 2 || !out[1].Terminal() {
		t.Errorf("out[1] = %+v", out[1])
	}

	back := ToAPIMessages(out)
	if back[1].Content != "a" || back[1].Status != api.StatusCompleted {
		t.Errorf("round trip lost fields: %+v", back[1])
	}
}
