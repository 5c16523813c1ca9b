package node

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/crypto/hkdf"

	"github.com/yndnr/validator-node/internal/core/domain"
)

// SeedSize is the length of the primary key seed.
const SeedSize = ed25519.SeedSize

// workerKeyInfo is the HKDF info prefix for worker keys.
const workerKeyInfo = "validator-node/worker/"

// ParseSeed decodes a hex encoded primary seed.
func ParseSeed(s string) ([]byte, error) {
	seed, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, domain.ErrInvalidArgument.WithDetails("seed is not hex").WithCause(err)
	}
	if len(seed) != SeedSize {
		return nil, domain.ErrInvalidArgument.WithDetails(
			fmt.Sprintf("seed must be %d bytes, got %d", SeedSize, len(seed)))
	}
	return seed, nil
}

// LoadOrCreateSeed reads the hex seed stored at path. When the file does
// not exist a new random seed is generated and written with mode 0600.
func LoadOrCreateSeed(path string) (seed []byte, created bool, err error) {
	data, err := os.ReadFile(path)
	if err == nil {
		seed, err = ParseSeed(string(data))
		if err != nil {
			return nil, false, fmt.Errorf("key file %s: %w", path, err)
		}
		return seed, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, fmt.Errorf("read key file: %w", err)
	}

	seed = make([]byte, SeedSize)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, false, fmt.Errorf("generate seed: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, false, fmt.Errorf("create key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(seed)+"\n"), 0o600); err != nil {
		return nil, false, fmt.Errorf("write key file: %w", err)
	}
	return seed, true, nil
}

// DeriveWorkerKey derives the network key of worker workerID from the
// primary seed with HKDF-SHA256. The same seed and id always give the
// same key.
func DeriveWorkerKey(primarySeed []byte, workerID uint32) (ed25519.PrivateKey, error) {
	if len(primarySeed) != SeedSize {
		return nil, domain.ErrInvalidArgument.WithDetails(
			fmt.Sprintf("seed must be %d bytes, got %d", SeedSize, len(primarySeed)))
	}

	info := []byte(workerKeyInfo + strconv.FormatUint(uint64(workerID), 10))
	r := hkdf.New(sha256.New, primarySeed, nil, info)

	seed := make([]byte, SeedSize)
	if _, err := io.ReadFull(r, seed); err != nil {
		return nil, fmt.Errorf("derive worker key: %w", err)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}
