package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"seed", true},
		{"private_key", true},
		{"PrivateKey", true},
		{"hkdf_secret", true},
		{"password", true},
		{"peer", false},
		{"public_key", false},
		{"digest", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsSensitiveKey(tt.key); got != tt.want {
				t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	a := slog.Group("node", slog.String("seed", "deadbeef"), slog.String("peer", "abc"))

	got := redactSensitive(a)

	attrs := got.Value.Group()
	if attrs[0].Value.String() != redactedValue {
		t.Errorf("seed = %q, want %q", attrs[0].Value.String(), redactedValue)
	}
	if attrs[1].Value.String() != "abc" {
		t.Errorf("peer = %q, want abc", attrs[1].Value.String())
	}
}

func TestLogger_RedactsKeyMaterial(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("loaded key", "seed", "00112233445566778899aabbccddeeff", "identity", "8sKzMuGnZ7")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if entry["seed"] != redactedValue {
		t.Errorf("seed = %v, want %q", entry["seed"], redactedValue)
	}
	if entry["identity"] != "8sKzMuGnZ7" {
		t.Errorf("identity = %v, want unchanged", entry["identity"])
	}
}
