package tinytable

import (
	"context"
	"fmt"
)

// Cursor identifies a cell position within the table's B-tree.
type Cursor struct {
	Table      *Table
	PageIdx    uint32
	CellIdx    uint32
	EndOfTable bool
}

func (c *Cursor) LeafNodeInsert(ctx context.Context, key uint32, aRow *Row) error {
	aPage, err := c.Table.pager.GetPage(ctx, c.PageIdx)
	if err != nil {
		return fmt.Errorf("get page: %w", err)
	}
	if aPage.LeafNode == nil {
		return fmt.Errorf("error inserting row to a non leaf node, key %d", key)
	}

	if aPage.LeafNode.Header.Cells >= LeafNodeMaxCells {
		// Split leaf node
		if err := c.LeafNodeSplitInsert(ctx, key, aRow); err != nil {
			return fmt.Errorf("leaf node split insert: %w", err)
		}
		return nil
	}

	if c.CellIdx < aPage.LeafNode.Header.Cells {
		// Shift cells right to make room
		for i := aPage.LeafNode.Header.Cells; i > c.CellIdx; i-- {
			aPage.LeafNode.Cells[i] = aPage.LeafNode.Cells[i-1]
		}
	}

	if err := c.saveToCell(&aPage.LeafNode.Cells[c.CellIdx], key, aRow); err != nil {
		return err
	}
	aPage.LeafNode.Header.Cells += 1

	return nil
}

// LeafNodeSplitInsert splits a full leaf. A new right sibling is created,
// cells plus the new one are divided evenly between the two leaves, and the
// parent is updated, creating a new root if the split leaf was the root.
func (c *Cursor) LeafNodeSplitInsert(ctx context.Context, key uint32, aRow *Row) error {
	aPager := c.Table.pager

	aSplitPage, err := aPager.GetPage(ctx, c.PageIdx)
	if err != nil {
		return fmt.Errorf("get page: %w", err)
	}

	originalMaxKey, err := c.Table.GetMaxKey(ctx, aSplitPage)
	if err != nil {
		return fmt.Errorf("get original max key: %w", err)
	}

	aNewPage, err := aPager.GetPage(ctx, aPager.TotalPages())
	if err != nil {
		return fmt.Errorf("get new page: %w", err)
	}

	c.Table.logger.Sugar().With(
		"key", int(key),
		"old_max_key", int(originalMaxKey),
		"new_page_index", int(aNewPage.Index),
	).Debug("leaf node split insert")

	aNewPage.LeafNode = NewLeafNode()
	aNewPage.LeafNode.Header.Parent = aSplitPage.LeafNode.Header.Parent

	aNewPage.LeafNode.Header.NextLeaf = aSplitPage.LeafNode.Header.NextLeaf
	aSplitPage.LeafNode.Header.NextLeaf = aNewPage.Index

	// Walk cells from the right, moving each one to its final position in
	// either the old (left) or the new (right) node.
	for i := uint32(LeafNodeMaxCells); ; i-- {
		if i+1 == 0 {
			break
		}
		var (
			destPage *Page
			isLeft   = i < LeafNodeLeftSplitCount
		)

		if !isLeft {
			destPage = aNewPage // right
		} else {
			destPage = aSplitPage // left
		}
		cellIdx := i % LeafNodeLeftSplitCount
		destCell := &destPage.LeafNode.Cells[cellIdx]

		if i == c.CellIdx {
			if err := c.saveToCell(destCell, key, aRow); err != nil {
				return err
			}
		} else if i > c.CellIdx {
			*destCell = aSplitPage.LeafNode.Cells[i-1]
		} else {
			*destCell = aSplitPage.LeafNode.Cells[i]
		}
	}

	// Update cell count on both leaf nodes
	aSplitPage.LeafNode.Header.Cells = LeafNodeLeftSplitCount
	aNewPage.LeafNode.Header.Cells = LeafNodeRightSplitCount

	if aSplitPage.LeafNode.Header.IsRoot {
		_, err := c.Table.CreateNewRoot(ctx, aNewPage.Index)
		return err
	}

	parentPageIdx := aSplitPage.LeafNode.Header.Parent
	aParentPage, err := aPager.GetPage(ctx, parentPageIdx)
	if err != nil {
		return fmt.Errorf("get parent page: %w", err)
	}

	// Unless the parent itself is about to split, update the split leaf's
	// key in the parent to its new max
	oldChildIdx := aParentPage.InternalNode.IndexOfChild(originalMaxKey)
	if oldChildIdx < c.Table.maxICells {
		oldPageNewMaxKey, err := c.Table.GetMaxKey(ctx, aSplitPage)
		if err != nil {
			return fmt.Errorf("get old page max key: %w", err)
		}
		aParentPage.InternalNode.ICells[oldChildIdx].Key = oldPageNewMaxKey
	}

	return c.Table.InternalNodeInsert(ctx, parentPageIdx, aNewPage.Index)
}

func (c *Cursor) fetchRow(ctx context.Context) (Row, error) {
	aPage, err := c.Table.pager.GetPage(ctx, c.PageIdx)
	if err != nil {
		return Row{}, fmt.Errorf("fetch row: %w", err)
	}

	var aRow Row
	if err := UnmarshalRow(aPage.LeafNode.Cells[c.CellIdx].Value[:], &aRow); err != nil {
		return Row{}, err
	}

	// There are still more cells in the page, move cursor to next cell and return
	if c.CellIdx < aPage.LeafNode.Header.Cells-1 {
		c.CellIdx += 1
		return aRow, nil
	}

	// If there is no leaf page to the right, set end of table flag and return
	if aPage.LeafNode.Header.NextLeaf == 0 {
		c.EndOfTable = true
		return aRow, nil
	}

	// Otherwise, we try to move the cursor to the next leaf page
	c.PageIdx = aPage.LeafNode.Header.NextLeaf
	c.CellIdx = 0

	return aRow, nil
}

func (c *Cursor) saveToCell(cell *Cell, key uint32, aRow *Row) error {
	rowBuf, err := aRow.Marshal()
	if err != nil {
		return fmt.Errorf("save to cell: %w", err)
	}

	cell.Key = key
	copy(cell.Value[:], rowBuf)

	return nil
}
