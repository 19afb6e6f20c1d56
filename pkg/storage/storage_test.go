package storage

import (
	"context"
	"testing"

	"github.com/richxcame/pokedex/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageKey(t *testing.T) {
	assert.Equal(t, "pokemon/25.png", ImageKey(25, "Pikachu.PNG"))
	assert.Equal(t, "pokemon/1.webp", ImageKey(1, "bulba.webp"))
	assert.Equal(t, "pokemon/7.png", ImageKey(7, "squirtle"))
}

func TestValidateMimeType(t *testing.T) {
	tests := []struct {
		name    string
		mime    string
		allowed []string
		want    bool
	}{
		{"no restriction", "application/pdf", nil, true},
		{"exact match", "image/png", []string{"image/png"}, true},
		{"case insensitive", "IMAGE/PNG", []string{"image/png"}, true},
		{"wildcard", "image/webp", []string{"image/*"}, true},
		{"rejected", "text/csv", []string{"image/*"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateMimeType(tt.mime, tt.allowed))
		})
	}
}

func TestGetMimeTypeFromExtension(t *testing.T) {
	assert.Equal(t, "image/jpeg", GetMimeTypeFromExtension("a.JPG"))
	assert.Equal(t, "image/png", GetMimeTypeFromExtension("a.png"))
	assert.Equal(t, "application/octet-stream", GetMimeTypeFromExtension("a.csv"))
}

func TestS3BaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.test/sprites", baseURL(S3Config{BaseURL: "https://cdn.test/sprites/"}))
	assert.Equal(t, "http://minio:9000/sprites", baseURL(S3Config{Endpoint: "http://minio:9000", Bucket: "sprites"}))
	assert.Equal(t, "https://sprites.s3.eu-west-1.amazonaws.com", baseURL(S3Config{Bucket: "sprites", Region: "eu-west-1"}))
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), &config.StorageConfig{Provider: "gcs", Bucket: "b"})
	assert.Error(t, err)

	s, err := New(context.Background(), &config.StorageConfig{
		Provider:  "s3",
		Bucket:    "sprites",
		Region:    "us-east-1",
		Endpoint:  "http://minio:9000",
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/sprites/pokemon/25.png", s.GetURL(ImageKey(25, "x.png")))
}
