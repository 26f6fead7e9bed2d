package store

import (
	"context"

	"github.com/groblegark/kofid/internal/model"
)

// Store persists the supporter ledger as a single whole document. There is
// no versioning and no locking: concurrent writers race and the last save
// wins. Load returns an empty ledger when no document exists yet.
type Store interface {
	Load(ctx context.Context) (*model.Ledger, error)
	Save(ctx context.Context, l *model.Ledger) error
	Close() error
}
