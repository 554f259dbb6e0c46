// Package store persists named collections as whole JSON documents. The
// contract is read/replace only: no partial updates, and a write must be
// durable before it returns.
package store

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Store is the persistence interface for whole-document collections.
// ReadCollection returns nil data (no error) when the collection does not
// exist yet.
type Store interface {
	ReadCollection(ctx context.Context, name string) ([]byte, error)
	WriteCollection(ctx context.Context, name string, data []byte) error

	Migrate(ctx context.Context) error
	Close() error
}

// Collection names used by the application.
const (
	CollectionMarkers = "markers"
	CollectionTips    = "tips"
)

// Load reads a collection and unmarshals it into out. A missing collection
// leaves out at its zero value. Corrupt JSON self-heals: the persisted
// document is reset to the zero value, a warning is logged, and no error is
// returned.
func Load[T any](ctx context.Context, s Store, name string, out *T) error {
	data, err := s.ReadCollection(ctx, name)
	if err != nil {
		return eris.Wrapf(err, "store: read %s", name)
	}
	if data == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		zap.L().Warn("store: corrupt collection, resetting to empty",
			zap.String("collection", name),
			zap.Error(err),
		)
		var zero T
		*out = zero
		reset, marshalErr := json.Marshal(zero)
		if marshalErr != nil {
			return eris.Wrapf(marshalErr, "store: marshal reset %s", name)
		}
		return eris.Wrapf(s.WriteCollection(ctx, name, reset), "store: reset %s", name)
	}
	return nil
}

// Save marshals v and replaces the named collection.
func Save(ctx context.Context, s Store, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "store: marshal %s", name)
	}
	return eris.Wrapf(s.WriteCollection(ctx, name, data), "store: write %s", name)
}
