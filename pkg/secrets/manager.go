// Package secrets loads sensitive settings from an external store at start up.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/richxcame/pokedex/pkg/logger"
	"go.uber.org/zap"
)

// ProviderType enumerates supported secret backends.
type ProviderType string

const (
	ProviderNone       ProviderType = ""
	ProviderVault      ProviderType = "vault"
	ProviderAWS        ProviderType = "aws"
	ProviderGCP        ProviderType = "gcp"
	ProviderKubernetes ProviderType = "kubernetes"
)

var (
	ErrProviderNotConfigured = errors.New("secrets: provider not configured")
	ErrInvalidReference      = errors.New("secrets: invalid reference")
	ErrKeyNotFound           = errors.New("secrets: key not found")
)

// Reference locates one secret inside a provider.
type Reference struct {
	Name     string // used in logs only
	Path     string
	Mount    string // Vault mount override
	Key      string // single entry within the secret
	Version  string
	Provider ProviderType
}

// CacheKey returns the cache identifier for the reference.
func (r Reference) CacheKey() string {
	var sb strings.Builder
	if r.Mount != "" {
		sb.WriteString(r.Mount)
		sb.WriteString("|")
	}
	sb.WriteString(r.Path)
	if r.Version != "" {
		sb.WriteString("@")
		sb.WriteString(r.Version)
	}
	return sb.String()
}

// ParseReference reads [provider://][mount::]path[@version][#key].
func ParseReference(name, raw string) (Reference, error) {
	ref := Reference{Name: name}

	clean := strings.TrimSpace(raw)
	if clean == "" {
		return ref, ErrInvalidReference
	}

	if idx := strings.Index(clean, "://"); idx > 0 {
		ref.Provider = ProviderType(clean[:idx])
		clean = clean[idx+3:]
	}
	if idx := strings.Index(clean, "#"); idx >= 0 {
		ref.Key = strings.TrimSpace(clean[idx+1:])
		clean = clean[:idx]
	}
	if idx := strings.Index(clean, "@"); idx >= 0 {
		ref.Version = strings.TrimSpace(clean[idx+1:])
		clean = clean[:idx]
	}
	if idx := strings.Index(clean, "::"); idx >= 0 {
		ref.Mount = strings.Trim(clean[:idx], "/ ")
		clean = clean[idx+2:]
	}

	ref.Path = strings.Trim(strings.TrimSpace(clean), "/")
	if ref.Path == "" {
		return ref, ErrInvalidReference
	}
	return ref, nil
}

// Secret is a resolved secret payload.
type Secret struct {
	Data    map[string]string
	Version string
}

// Value returns a single non-empty entry from the payload.
func (s Secret) Value(key string) (string, bool) {
	val, ok := s.Data[key]
	return val, ok && val != ""
}

// Config is the runtime configuration of a Manager.
type Config struct {
	Provider   ProviderType
	CacheTTL   time.Duration
	Vault      VaultConfig
	AWS        AWSConfig
	GCP        GCPConfig
	Kubernetes KubernetesConfig
}

// Manager resolves secrets from the configured backend.
type Manager interface {
	GetString(ctx context.Context, ref Reference) (string, error)
	Close() error
}

type provider interface {
	Name() ProviderType
	Fetch(ctx context.Context, ref Reference) (Secret, error)
	Close() error
}

type cachedSecret struct {
	secret    Secret
	expiresAt time.Time
}

type manager struct {
	provider provider
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[string]cachedSecret
}

// NewManager creates a Manager for the configured provider.
func NewManager(ctx context.Context, cfg Config) (Manager, error) {
	var (
		prov provider
		err  error
	)
	switch cfg.Provider {
	case ProviderNone:
		return nil, ErrProviderNotConfigured
	case ProviderVault:
		prov, err = newVaultProvider(cfg.Vault)
	case ProviderAWS:
		prov, err = newAWSProvider(ctx, cfg.AWS)
	case ProviderGCP:
		prov, err = newGCPProvider(ctx, cfg.GCP)
	case ProviderKubernetes:
		prov, err = newKubernetesProvider(cfg.Kubernetes)
	default:
		err = fmt.Errorf("secrets: unsupported provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return newManager(prov, cfg.CacheTTL), nil
}

func newManager(prov provider, cacheTTL time.Duration) *manager {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &manager{
		provider: prov,
		cacheTTL: cacheTTL,
		cache:    make(map[string]cachedSecret),
	}
}

func (m *manager) Close() error {
	return m.provider.Close()
}

// GetString returns ref.Key from the referenced secret. Without a key the
// secret must hold exactly one entry.
func (m *manager) GetString(ctx context.Context, ref Reference) (string, error) {
	if ref.Provider != ProviderNone && ref.Provider != m.provider.Name() {
		return "", fmt.Errorf("secrets: reference %q targets %q but the manager uses %q", ref.Name, ref.Provider, m.provider.Name())
	}

	secret, err := m.fetch(ctx, ref)
	if err != nil {
		logger.Warn("secret fetch failed",
			zap.String("secret_name", ref.Name),
			zap.String("provider", string(m.provider.Name())),
			zap.Error(err))
		return "", err
	}

	if ref.Key == "" {
		if len(secret.Data) == 1 {
			for _, v := range secret.Data {
				if v != "" {
					return v, nil
				}
			}
		}
		return "", fmt.Errorf("%w: %q holds %d entries, name one with #key", ErrKeyNotFound, ref.Name, len(secret.Data))
	}
	if value, ok := secret.Value(ref.Key); ok {
		return value, nil
	}
	return "", fmt.Errorf("%w: %s", ErrKeyNotFound, ref.Key)
}

func (m *manager) fetch(ctx context.Context, ref Reference) (Secret, error) {
	key := ref.CacheKey()

	m.mu.RLock()
	entry, ok := m.cache[key]
	m.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.secret, nil
	}

	secret, err := m.provider.Fetch(ctx, ref)
	if err != nil {
		return Secret{}, err
	}

	m.mu.Lock()
	m.cache[key] = cachedSecret{secret: secret, expiresAt: time.Now().Add(m.cacheTTL)}
	m.mu.Unlock()

	logger.Info("secret fetched",
		zap.String("secret_name", ref.Name),
		zap.String("provider", string(m.provider.Name())),
		zap.String("version", secret.Version))
	return secret, nil
}
