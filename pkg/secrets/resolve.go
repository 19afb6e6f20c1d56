package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/richxcame/pokedex/pkg/config"
)

// ConfigFrom maps the application settings to a manager configuration.
func ConfigFrom(c *config.SecretsConfig) Config {
	return Config{
		Provider: ProviderType(c.Provider),
		CacheTTL: time.Duration(c.CacheTTL) * time.Second,
		Vault: VaultConfig{
			Address:   c.VaultAddress,
			Token:     c.VaultToken,
			Namespace: c.VaultNamespace,
			MountPath: c.VaultMount,
		},
		AWS: AWSConfig{
			Region:   c.AWSRegion,
			Endpoint: c.AWSEndpoint,
		},
		GCP: GCPConfig{
			ProjectID:       c.GCPProjectID,
			CredentialsFile: c.GCPCredentials,
		},
		Kubernetes: KubernetesConfig{BasePath: c.KubernetesPath},
	}
}

// Resolve overwrites the sensitive settings that have a reference with the
// value from the store. Settings without a reference keep their env value.
func Resolve(ctx context.Context, m Manager, cfg *config.Config) error {
	targets := []struct {
		name string
		raw  string
		dest *string
	}{
		{"jwt_secret", cfg.Secrets.JWTSecretRef, &cfg.JWT.Secret},
		{"database_password", cfg.Secrets.DatabasePasswordRef, &cfg.Database.Password},
		{"storage_secret_key", cfg.Secrets.StorageSecretRef, &cfg.Storage.SecretKey},
	}

	for _, t := range targets {
		if t.raw == "" {
			continue
		}
		ref, err := ParseReference(t.name, t.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", t.name, err)
		}
		value, err := m.GetString(ctx, ref)
		if err != nil {
			return fmt.Errorf("%s: %w", t.name, err)
		}
		*t.dest = value
	}
	return nil
}

// Apply resolves referenced settings when a provider is configured and then
// validates the result.
func Apply(ctx context.Context, cfg *config.Config) error {
	if cfg.Secrets.Provider != "" {
		m, err := NewManager(ctx, ConfigFrom(&cfg.Secrets))
		if err != nil {
			return err
		}
		defer m.Close()
		if err := Resolve(ctx, m, cfg); err != nil {
			return err
		}
	}
	return cfg.Validate()
}
