package tinytable

import (
	"context"
	"fmt"
)

// Insert adds a row keyed by its ID, keeping keys in ascending order.
// Inserting an ID that already exists returns ErrDuplicateKey.
func (t *Table) Insert(ctx context.Context, aRow Row) error {
	if err := aRow.Validate(); err != nil {
		return err
	}

	aCursor, err := t.Seek(ctx, aRow.ID)
	if err != nil {
		return err
	}

	aPage, err := t.pager.GetPage(ctx, aCursor.PageIdx)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	// Must be leaf node
	if aPage.LeafNode == nil {
		return fmt.Errorf("trying to insert into non leaf node")
	}

	t.logger.Sugar().With(
		"page_index", int(aCursor.PageIdx),
		"cell_index", int(aCursor.CellIdx),
		"row_id", int(aRow.ID),
	).Debug("inserting row")

	if aCursor.CellIdx < aPage.LeafNode.Header.Cells {
		if aPage.LeafNode.Cells[aCursor.CellIdx].Key == aRow.ID {
			return fmt.Errorf("%w: %d", ErrDuplicateKey, aRow.ID)
		}
	}

	return aCursor.LeafNodeInsert(ctx, aRow.ID, &aRow)
}
