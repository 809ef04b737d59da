package draft

import (
	"context"
	"errors"

	pkgerrors "github.com/angelmondragon/customorder-backend/pkg/errors"
	"github.com/angelmondragon/customorder-backend/pkg/logger"
)

// BestEffort wraps a Store so persistence problems never reach the user:
// failures are logged and the form carries on with its in-memory state.
type BestEffort struct {
	store Store
	logg  *logger.Logger
}

func NewBestEffort(store Store, logg *logger.Logger) *BestEffort {
	return &BestEffort{store: store, logg: logg}
}

func (b *BestEffort) Save(ctx context.Context, key string, d *Draft) {
	if err := b.store.Save(ctx, key, d); err != nil {
		b.warn(ctx, key, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "save draft"))
	}
}

// Load always returns a usable draft; a missing or unreadable record gives
// an empty one.
func (b *BestEffort) Load(ctx context.Context, key string) *Draft {
	d, err := b.store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			b.warn(ctx, key, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load draft"))
		}
		return New()
	}
	return d
}

func (b *BestEffort) Clear(ctx context.Context, key string) {
	if err := b.store.Clear(ctx, key); err != nil {
		b.warn(ctx, key, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "clear draft"))
	}
}

func (b *BestEffort) warn(ctx context.Context, key string, err *pkgerrors.Error) {
	if b.logg == nil {
		return
	}
	ctx = b.logg.WithFields(ctx, map[string]any{
		"draft_key": key,
		"error":     pkgerrors.Dump(err),
	})
	b.logg.Warn(ctx, err.Message())
}
