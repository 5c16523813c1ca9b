package node

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/validator-node/internal/core/domain"
)

func TestParseSeed(t *testing.T) {
	valid := hex.EncodeToString(testSeed())

	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"valid", valid, false},
		{"trailing newline", valid + "\n", false},
		{"not hex", strings.Repeat("zz", SeedSize), true},
		{"too short", valid[:10], true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed, err := ParseSeed(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSeed() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidArgument) {
					t.Errorf("error = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if !bytes.Equal(seed, testSeed()) {
				t.Errorf("ParseSeed() = %x", seed)
			}
		})
	}
}

func TestLoadOrCreateSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "primary.key")

	seed, created, err := LoadOrCreateSeed(path)
	if err != nil {
		t.Fatalf("LoadOrCreateSeed() error = %v", err)
	}
	if !created || len(seed) != SeedSize {
		t.Fatalf("created = %v, len = %d", created, len(seed))
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("key file mode = %v, want 0600", info.Mode().Perm())
	}

	again, created, err := LoadOrCreateSeed(path)
	if err != nil {
		t.Fatalf("second LoadOrCreateSeed() error = %v", err)
	}
	if created {
		t.Error("second call should load the existing seed")
	}
	if !bytes.Equal(again, seed) {
		t.Error("reloaded seed differs")
	}
}

func TestLoadOrCreateSeed_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "primary.key")
	if err := os.WriteFile(path, []byte("not a seed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadOrCreateSeed(path); err == nil {
		t.Error("expected error for corrupt key file")
	}
}

func TestDeriveWorkerKey(t *testing.T) {
	k0, err := DeriveWorkerKey(testSeed(), 0)
	if err != nil {
		t.Fatalf("DeriveWorkerKey() error = %v", err)
	}
	if len(k0) != ed25519.PrivateKeySize {
		t.Fatalf("key size = %d", len(k0))
	}

	again, _ := DeriveWorkerKey(testSeed(), 0)
	if !k0.Equal(again) {
		t.Error("derivation is not deterministic")
	}

	k1, _ := DeriveWorkerKey(testSeed(), 1)
	if k0.Equal(k1) {
		t.Error("workers 0 and 1 share a key")
	}

	primary := ed25519.NewKeyFromSeed(testSeed())
	if primary.Equal(k0) {
		t.Error("worker key equals primary key")
	}

	if _, err := DeriveWorkerKey([]byte{1}, 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("short seed error = %v, want ErrInvalidArgument", err)
	}
}
