// Package numbering hands out per-owner item numbers.
package numbering

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stashkeeper-backend/pkg/enums"
)

// The upsert takes the counter row's write lock, so concurrent creates for the
// same owner and kind serialise here until the surrounding transaction ends.
const nextNumberSQL = `
INSERT INTO item_sequences (owner_id, kind, last_number)
VALUES (?, ?, 1)
ON CONFLICT (owner_id, kind)
DO UPDATE SET last_number = item_sequences.last_number + 1
RETURNING last_number`

// Next returns the next item number for owner and kind. tx must be the
// transaction that inserts the item; numbers are never reused because the
// counter never decreases.
func Next(ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind enums.ItemKind) (int64, error) {
	if !kind.IsValid() {
		return 0, fmt.Errorf("invalid item kind %q", kind)
	}
	var next int64
	if err := tx.WithContext(ctx).Raw(nextNumberSQL, owner, string(kind)).Scan(&next).Error; err != nil {
		return 0, fmt.Errorf("next item number: %w", err)
	}
	if next <= 0 {
		return 0, fmt.Errorf("next item number: counter returned %d", next)
	}
	return next, nil
}
