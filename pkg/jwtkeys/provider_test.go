package jwtkeys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProvider_CurrentSigningKey(t *testing.T) {
	p := NewStaticProvider("secret")

	key, err := p.CurrentSigningKey()
	require.NoError(t, err)
	assert.Equal(t, "static", key.ID)
	assert.Equal(t, []byte("secret"), key.Secret)

	// Returned secret is a copy
	key.Secret[0] = 'X'
	again, _ := p.CurrentSigningKey()
	assert.Equal(t, []byte("secret"), again.Secret)
}

func TestStaticProvider_ResolveKey(t *testing.T) {
	p := NewStaticProvider("secret")

	tests := []struct {
		name    string
		kid     string
		wantErr error
	}{
		{name: "static kid", kid: "static"},
		{name: "empty kid", kid: ""},
		{name: "unknown kid", kid: "rotated-1", wantErr: ErrUnknownKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret, err := p.ResolveKey(tt.kid)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []byte("secret"), secret)
		})
	}
}

func TestStaticProvider_EmptySecret(t *testing.T) {
	p := NewStaticProvider("")

	_, err := p.CurrentSigningKey()
	assert.Error(t, err)

	_, err = p.ResolveKey("")
	assert.Error(t, err)
}
