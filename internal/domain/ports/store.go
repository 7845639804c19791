package ports

import (
	"context"
	"errors"

	"exchange-rate-monitor/internal/domain/model"
)

// ErrConflict is returned by Save when the document changed on disk after
// Load; the run must fail the write rather than overwrite the concurrent
// edit.
var ErrConflict = errors.New("document modified since load")

// DocumentStore persists the whole document. Load at the start of a run,
// Save once at the end and only if something changed; Save checkpoints the
// new revision in an append-only history.
type DocumentStore interface {
	Load(ctx context.Context) (*model.Document, error)
	Save(ctx context.Context, doc *model.Document) error
}
