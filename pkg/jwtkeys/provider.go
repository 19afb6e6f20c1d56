package jwtkeys

import (
	"errors"
	"fmt"
)

// ErrUnknownKey is returned when a token references a key the provider does not hold
var ErrUnknownKey = errors.New("unknown signing key")

// SigningKey is an HMAC key used to sign and verify access tokens
type SigningKey struct {
	ID     string
	Secret []byte
}

// KeyProvider supplies the signing key for new tokens and resolves keys for verification
type KeyProvider interface {
	CurrentSigningKey() (SigningKey, error)
	ResolveKey(kid string) ([]byte, error)
}

// StaticProvider serves a single shared secret
type StaticProvider struct {
	key SigningKey
}

// NewStaticProvider creates a provider for a single HMAC secret
func NewStaticProvider(secret string) *StaticProvider {
	return &StaticProvider{key: SigningKey{ID: "static", Secret: []byte(secret)}}
}

// CurrentSigningKey returns the shared key
func (p *StaticProvider) CurrentSigningKey() (SigningKey, error) {
	if len(p.key.Secret) == 0 {
		return SigningKey{}, fmt.Errorf("no signing secret configured")
	}
	return SigningKey{ID: p.key.ID, Secret: append([]byte(nil), p.key.Secret...)}, nil
}

// ResolveKey accepts the static kid and tokens without a kid
func (p *StaticProvider) ResolveKey(kid string) ([]byte, error) {
	if kid != "" && kid != p.key.ID {
		return nil, ErrUnknownKey
	}
	if len(p.key.Secret) == 0 {
		return nil, fmt.Errorf("no signing secret configured")
	}
	return p.key.Secret, nil
}
