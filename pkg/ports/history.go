package ports

import (
	"context"

	"github.com/aretw0/rewatch/pkg/domain"
)

// HistoryStore persists records of executed chains.
type HistoryStore interface {
	// Append stores a record.
	Append(ctx context.Context, record domain.RunRecord) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]domain.RunRecord, error)
}
