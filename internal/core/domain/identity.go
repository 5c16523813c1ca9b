package domain

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// IdentitySize is the length of an Identity in bytes.
const IdentitySize = 32

// Identity is the public identifier of a primary or worker. It is the raw
// ed25519 network public key of the role instance.
type Identity [IdentitySize]byte

// ZeroIdentity is the all-zero placeholder identity used before key
// generation and in tests.
var ZeroIdentity = Identity{}

// IdentityFromPublicKey derives the identity of a role instance from its
// network public key.
func IdentityFromPublicKey(pub ed25519.PublicKey) (Identity, error) {
	var id Identity
	if len(pub) != ed25519.PublicKeySize {
		return id, ErrInvalidArgument.WithDetails(
			fmt.Sprintf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pub)))
	}
	copy(id[:], pub)
	return id, nil
}

// ParseIdentity decodes a base58 identity as produced by String.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	b, err := base58.Decode(s)
	if err != nil {
		return id, ErrInvalidArgument.WithDetails("identity is not base58").WithCause(err)
	}
	if len(b) != IdentitySize {
		return id, ErrInvalidArgument.WithDetails(
			fmt.Sprintf("identity must be %d bytes, got %d", IdentitySize, len(b)))
	}
	copy(id[:], b)
	return id, nil
}

// IsZero reports whether id is the placeholder identity.
func (id Identity) IsZero() bool {
	return id == ZeroIdentity
}

// Bytes returns a copy of the identity bytes.
func (id Identity) Bytes() []byte {
	b := make([]byte, IdentitySize)
	copy(b, id[:])
	return b
}

// PublicKey returns the identity as an ed25519 public key.
func (id Identity) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(id.Bytes())
}

// String returns the base58 encoding of the identity.
func (id Identity) String() string {
	return base58.Encode(id[:])
}

// ShortString returns an abbreviated form for log lines.
func (id Identity) ShortString() string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// MarshalText implements encoding.TextMarshaler.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
