package blob

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound    = errors.New("blob not found")
	ErrEmptyPrefix = errors.New("empty blob prefix")
)

// Store reads and writes tenant-scoped objects.
type Store interface {
	Download(ctx context.Context, tenant, path string) ([]byte, error)
	// Upload stores data and returns a locator for it.
	Upload(ctx context.Context, tenant, path string, data []byte, contentType string) (string, error)
	// DeletePrefix removes every object under prefix. An empty prefix is
	// rejected so a tenant is never wiped by accident.
	DeletePrefix(ctx context.Context, tenant, prefix string) error
}

// Key joins tenant and path into an object key.
func Key(tenant, path string) string {
	tenant = strings.Trim(tenant, "/")
	path = strings.TrimLeft(path, "/")
	if tenant == "" {
		return path
	}
	return tenant + "/" + path
}

// PrefixKey is the key prefix matching everything below prefix, ending in "/".
func PrefixKey(tenant, prefix string) (string, error) {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return "", ErrEmptyPrefix
	}
	return Key(tenant, prefix) + "/", nil
}
