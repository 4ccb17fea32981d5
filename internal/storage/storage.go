// Package storage keeps uploaded lesson files and hands out read URLs for
// them. Objects are addressed by a flat name chosen at upload time.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidName    = errors.New("invalid object name")
)

// Store is a blob store for lesson resources.
type Store interface {
	// Put writes r under name. The object is only visible once Put returns nil.
	Put(ctx context.Context, name, contentType string, r io.Reader) error
	// SignedURL returns a time-limited read URL for name.
	SignedURL(ctx context.Context, name string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, name string) error
	// Backend names the implementation for logs.
	Backend() string
}

// IsObjectName reports whether ref is a bare object name produced by an
// upload, as opposed to an external URL an author typed in.
func IsObjectName(ref string) bool {
	if ref == "" || ref == "." || ref == ".." {
		return false
	}
	return !strings.ContainsAny(ref, `/\:?#`)
}

func checkName(name string) error {
	if !IsObjectName(name) {
		return ErrInvalidName
	}
	return nil
}
