// Package secretstore binds an environment to its provider and implements the
// single-blob convention on top of it.
//
// Every logical secret of an environment lives in one JSON object stored as
// the payload of the provider resource "<prefix>secrets". Commands read the
// whole blob, change it in memory and write it back as a new version. Writes
// are last-writer-wins: two processes editing the same environment at once
// race and the later SetSecret silently discards the earlier edit.
package secretstore

import (
	"context"
	"errors"
	"io"

	dserrors "github.com/systmms/cloudsec/internal/errors"
	"github.com/systmms/cloudsec/pkg/provider"
)

// Store forwards provider operations for one environment.
type Store struct {
	provider provider.Provider
}

// New selects the provider for env.Provider through factory.
func New(ctx context.Context, env provider.Environment, factory provider.Factory) (*Store, error) {
	if factory == nil {
		return nil, dserrors.UnsupportedProvider(string(env.Provider))
	}
	p, err := factory(ctx, env)
	if err != nil {
		return nil, err
	}
	return NewWithProvider(p), nil
}

// NewWithProvider wraps an already constructed provider.
func NewWithProvider(p provider.Provider) *Store {
	return &Store{provider: p}
}

func (s *Store) Environment() provider.Environment {
	return s.provider.Environment()
}

func (s *Store) ListSecrets(ctx context.Context) ([]provider.SecretMetadata, error) {
	return s.provider.ListSecrets(ctx)
}

func (s *Store) GetSecret(ctx context.Context, name string) (string, error) {
	return s.provider.GetSecret(ctx, name)
}

func (s *Store) SetSecret(ctx context.Context, name, value string, labels map[string]string) error {
	return s.provider.SetSecret(ctx, name, value, labels)
}

func (s *Store) DeleteSecret(ctx context.Context, name string, allVersions bool) error {
	return s.provider.DeleteSecret(ctx, name, allVersions)
}

func (s *Store) SecretExists(ctx context.Context, name string) (bool, error) {
	return s.provider.SecretExists(ctx, name)
}

func (s *Store) SecretVersions(ctx context.Context, name string) ([]provider.SecretVersion, error) {
	return s.provider.SecretVersions(ctx, name)
}

func (s *Store) TestConnection(ctx context.Context) bool {
	return s.provider.TestConnection(ctx)
}

// Close releases the provider's client when it holds one.
func (s *Store) Close() error {
	if c, ok := s.provider.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// BlobName returns the resource name holding env's blob.
func (s *Store) BlobName() string {
	return BlobName(s.Environment())
}

// LoadBlob reads the environment's blob. A missing resource or version reads
// as an empty blob.
func (s *Store) LoadBlob(ctx context.Context) (Blob, error) {
	b, err := s.RequireBlob(ctx)
	if err != nil {
		if provider.IsNotFound(err) {
			return Blob{}, nil
		}
		return nil, err
	}
	return b, nil
}

// RequireBlob reads the blob like LoadBlob but reports a missing resource as
// an error matching provider.ErrNotFound.
func (s *Store) RequireBlob(ctx context.Context) (Blob, error) {
	name := s.BlobName()
	raw, err := s.provider.GetSecret(ctx, name)
	if err != nil {
		return nil, err
	}

	b, err := DecodeBlob(raw)
	if err != nil {
		var cause *DecodeError
		if errors.As(err, &cause) {
			return nil, dserrors.CorruptBlob(provider.ResolveName(s.Environment().Prefix, name), cause)
		}
		return nil, err
	}
	return b, nil
}

// SaveBlob writes b as a new version of the blob resource. labels are
// overlaid on the environment labels if the resource has to be created.
func (s *Store) SaveBlob(ctx context.Context, b Blob, labels map[string]string) error {
	raw, err := EncodeBlob(b)
	if err != nil {
		return err
	}
	return s.provider.SetSecret(ctx, s.BlobName(), raw, s.Environment().MergedLabels(labels))
}
