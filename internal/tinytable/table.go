package tinytable

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

type Pager interface {
	GetPage(ctx context.Context, pageIdx uint32) (*Page, error)
	TotalPages() uint32
	Flush(ctx context.Context, pageIdx uint32) error
	FlushAll(ctx context.Context) error
}

type Table struct {
	Name        string
	RootPageIdx uint32
	pager       Pager
	maxICells   uint32
	logger      *zap.Logger
}

func NewTable(logger *zap.Logger, name string, pager Pager, rootPageIdx uint32) *Table {
	return &Table{
		Name:        name,
		RootPageIdx: rootPageIdx,
		pager:       pager,
		maxICells:   InternalNodeMaxCells,
		logger:      logger,
	}
}

// SeekFirst returns a cursor pointing at the leftmost cell of the tree.
func (t *Table) SeekFirst(ctx context.Context) (*Cursor, error) {
	pageIdx := t.RootPageIdx
	aPage, err := t.pager.GetPage(ctx, pageIdx)
	if err != nil {
		return nil, fmt.Errorf("seek first: %w", err)
	}
	for aPage.LeafNode == nil {
		pageIdx = aPage.InternalNode.ICells[0].Child
		aPage, err = t.pager.GetPage(ctx, pageIdx)
		if err != nil {
			return nil, fmt.Errorf("seek first: %w", err)
		}
	}
	return &Cursor{
		Table:      t,
		PageIdx:    pageIdx,
		CellIdx:    0,
		EndOfTable: aPage.LeafNode.Header.Cells == 0,
	}, nil
}

// Seek returns a cursor at the key's cell. If the key does not exist the
// cursor points at the page and cell where it would be inserted.
func (t *Table) Seek(ctx context.Context, key uint32) (*Cursor, error) {
	aRootPage, err := t.pager.GetPage(ctx, t.RootPageIdx)
	if err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	if aRootPage.LeafNode != nil {
		return t.leafNodeSeek(t.RootPageIdx, aRootPage, key)
	} else if aRootPage.InternalNode != nil {
		return t.internalNodeSeek(ctx, aRootPage, key)
	}
	return nil, fmt.Errorf("root page type")
}

func (t *Table) leafNodeSeek(pageIdx uint32, aPage *Page, key uint32) (*Cursor, error) {
	var (
		minIdx uint32
		maxIdx = aPage.LeafNode.Header.Cells

		aCursor = Cursor{
			Table:   t,
			PageIdx: pageIdx,
		}
	)

	// Binary search for the lower bound of the key
	for i := maxIdx; i != minIdx; {
		index := (minIdx + i) / 2
		keyIdx := aPage.LeafNode.Cells[index].Key
		if key == keyIdx {
			aCursor.CellIdx = index
			return &aCursor, nil
		}
		if key < keyIdx {
			i = index
		} else {
			minIdx = index + 1
		}
	}

	aCursor.CellIdx = minIdx

	return &aCursor, nil
}

func (t *Table) internalNodeSeek(ctx context.Context, aPage *Page, key uint32) (*Cursor, error) {
	childIdx := aPage.InternalNode.IndexOfChild(key)
	childPageIdx, err := aPage.InternalNode.Child(childIdx)
	if err != nil {
		return nil, err
	}

	aChildPage, err := t.pager.GetPage(ctx, childPageIdx)
	if err != nil {
		return nil, fmt.Errorf("internal node seek: %w", err)
	}

	if aChildPage.InternalNode != nil {
		return t.internalNodeSeek(ctx, aChildPage, key)
	}
	return t.leafNodeSeek(childPageIdx, aChildPage, key)
}

// CreateNewRoot handles a root split. The old root's contents move to a
// fresh page which becomes the left child, the given page index becomes the
// right child, and page 0 is reinitialized as an internal node pointing at
// the two children. The root never changes its page number.
func (t *Table) CreateNewRoot(ctx context.Context, rightChildPageIdx uint32) (*Page, error) {
	oldRootPage, err := t.pager.GetPage(ctx, t.RootPageIdx)
	if err != nil {
		return nil, fmt.Errorf("create new root: %w", err)
	}

	rightChildPage, err := t.pager.GetPage(ctx, rightChildPageIdx)
	if err != nil {
		return nil, fmt.Errorf("create new root: %w", err)
	}

	leftChildPageIdx := t.pager.TotalPages()
	leftChildPage, err := t.pager.GetPage(ctx, leftChildPageIdx)
	if err != nil {
		return nil, fmt.Errorf("create new root: %w", err)
	}

	t.logger.Sugar().With(
		"left_child_index", int(leftChildPageIdx),
		"right_child_index", int(rightChildPageIdx),
	).Debug("create new root")

	// Copy all node contents to left child
	if oldRootPage.LeafNode != nil {
		*leftChildPage.LeafNode = *oldRootPage.LeafNode
		leftChildPage.LeafNode.Header.IsRoot = false
	} else if oldRootPage.InternalNode != nil {
		// New pages by default are leafs so we need to reset left child page
		// as an internal node here
		leftChildPage.InternalNode = NewInternalNode()
		leftChildPage.LeafNode = nil
		*leftChildPage.InternalNode = *oldRootPage.InternalNode
		leftChildPage.InternalNode.Header.IsRoot = false
		// Update parent for all child pages
		for i := 0; i < int(leftChildPage.InternalNode.Header.KeysNum); i++ {
			aChildPage, err := t.pager.GetPage(ctx, leftChildPage.InternalNode.ICells[i].Child)
			if err != nil {
				return nil, fmt.Errorf("create new root: %w", err)
			}
			aChildPage.setParent(leftChildPageIdx)
		}
	}

	// Change root node to a new internal node
	newRootNode := NewInternalNode()
	oldRootPage.LeafNode = nil
	oldRootPage.InternalNode = newRootNode
	newRootNode.Header.IsRoot = true
	newRootNode.Header.KeysNum = 1

	// Set left and right child
	newRootNode.Header.RightChild = rightChildPageIdx
	if err := newRootNode.SetChild(0, leftChildPageIdx); err != nil {
		return nil, err
	}
	leftChildMaxKey, err := t.GetMaxKey(ctx, leftChildPage)
	if err != nil {
		return nil, fmt.Errorf("create new root: %w", err)
	}
	newRootNode.ICells[0].Key = leftChildMaxKey

	// Set parent for both left and right child
	leftChildPage.setParent(t.RootPageIdx)
	rightChildPage.setParent(t.RootPageIdx)

	return leftChildPage, nil
}

// InternalNodeInsert adds a child/key cell for the given child page to the
// parent internal node.
func (t *Table) InternalNodeInsert(ctx context.Context, parentPageIdx, childPageIdx uint32) error {
	aParentPage, err := t.pager.GetPage(ctx, parentPageIdx)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}

	aChildPage, err := t.pager.GetPage(ctx, childPageIdx)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}
	aChildPage.setParent(parentPageIdx)

	childMaxKey, err := t.GetMaxKey(ctx, aChildPage)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}
	var (
		index            = aParentPage.InternalNode.IndexOfChild(childMaxKey)
		originalKeyCount = aParentPage.InternalNode.Header.KeysNum
	)

	if aParentPage.InternalNode.Header.KeysNum >= t.maxICells {
		return t.InternalNodeSplitInsert(ctx, parentPageIdx, childPageIdx)
	}

	// An internal node with an unset right child is empty
	if aParentPage.InternalNode.Header.RightChild == RightChildNotSet {
		aParentPage.InternalNode.Header.RightChild = childPageIdx
		return nil
	}

	aParentPage.InternalNode.Header.KeysNum += 1

	rightChildPageIdx := aParentPage.InternalNode.Header.RightChild
	rightChildPage, err := t.pager.GetPage(ctx, rightChildPageIdx)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}

	rightChildMaxKey, err := t.GetMaxKey(ctx, rightChildPage)
	if err != nil {
		return fmt.Errorf("internal node insert: %w", err)
	}
	if childMaxKey > rightChildMaxKey {
		// Replace right child
		aParentPage.InternalNode.SetChild(originalKeyCount, rightChildPageIdx)
		aParentPage.InternalNode.ICells[originalKeyCount].Key = rightChildMaxKey
		aParentPage.InternalNode.Header.RightChild = childPageIdx
		return nil
	}

	// Make room for the new cell
	for i := originalKeyCount; i > index; i-- {
		aParentPage.InternalNode.ICells[i] = aParentPage.InternalNode.ICells[i-1]
	}
	aParentPage.InternalNode.SetChild(index, childPageIdx)
	aParentPage.InternalNode.ICells[index].Key = childMaxKey

	return nil
}

// InternalNodeSplitInsert splits a full internal node. A sibling node is
// created to the right and receives the upper half of the keys, the original
// node's key in its parent is updated to its new max key, and the sibling is
// inserted into the parent, which may split it in turn. Splitting the root
// goes through CreateNewRoot first.
func (t *Table) InternalNodeSplitInsert(ctx context.Context, pageIdx, childPageIdx uint32) error {
	aSplitPage, err := t.pager.GetPage(ctx, pageIdx)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	splittingRoot := aSplitPage.InternalNode.Header.IsRoot
	oldMaxKey, err := t.GetMaxKey(ctx, aSplitPage)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}

	childPage, err := t.pager.GetPage(ctx, childPageIdx)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	childMaxKey, err := t.GetMaxKey(ctx, childPage)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}

	newPageIdx := t.pager.TotalPages()
	// Create a new page, it will be on the same level as original node and to the right of it
	aNewPage, err := t.pager.GetPage(ctx, newPageIdx)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	// Make sure the new page is an internal node
	aNewPage.InternalNode = NewInternalNode()
	aNewPage.LeafNode = nil

	t.logger.Sugar().With(
		"page_index", int(pageIdx),
		"new_page_index", int(newPageIdx),
	).Debug("internal node split insert")

	if splittingRoot {
		// If we are splitting the root, aSplitPage needs to point at the
		// new root's left child, newPageIdx will already point at the
		// new root's right child
		aSplitPage, err = t.CreateNewRoot(ctx, newPageIdx)
		if err != nil {
			return err
		}
	}
	aNewPage.InternalNode.Header.Parent = aSplitPage.InternalNode.Header.Parent

	var maxCells = t.maxICells

	// First put right child into new node and set right child of old node to invalid page number
	aNewPage.InternalNode.Header.RightChild = aSplitPage.InternalNode.Header.RightChild
	newPageRightChild, err := t.pager.GetPage(ctx, aNewPage.InternalNode.Header.RightChild)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	newPageRightChild.setParent(newPageIdx)
	aSplitPage.InternalNode.Header.RightChild = RightChildNotSet

	// For each key until you get to the middle key, move the key and the child to the new node
	for i := maxCells - 1; i > maxCells/2; i-- {
		if err := t.InternalNodeInsert(ctx, newPageIdx, aSplitPage.InternalNode.ICells[i].Child); err != nil {
			return fmt.Errorf("internal node split insert: %w", err)
		}
		aSplitPage.InternalNode.ICells[i] = ICell{}
		aSplitPage.InternalNode.Header.KeysNum -= 1
	}

	// Set child before middle key, which is now the highest key, to be node's right child,
	// and decrement number of keys
	aSplitPage.InternalNode.Header.RightChild, _ = aSplitPage.InternalNode.Child(aSplitPage.InternalNode.Header.KeysNum - 1)
	aSplitPage.InternalNode.RemoveLastCell()

	maxAfterSplit, err := t.GetMaxKey(ctx, aSplitPage)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}

	// Determine which of the two nodes after the split should contain the child to be inserted,
	// and insert the child
	if childMaxKey < maxAfterSplit {
		if err := t.InternalNodeInsert(ctx, pageIdx, childPageIdx); err != nil {
			return fmt.Errorf("internal node split insert: %w", err)
		}
		childPage.setParent(pageIdx)
	} else {
		if err := t.InternalNodeInsert(ctx, newPageIdx, childPageIdx); err != nil {
			return fmt.Errorf("internal node split insert: %w", err)
		}
		childPage.setParent(newPageIdx)
	}

	aParentPage, err := t.pager.GetPage(ctx, aSplitPage.InternalNode.Header.Parent)
	if err != nil {
		return fmt.Errorf("internal node split insert: %w", err)
	}
	aParentPage.InternalNode.ICells[aParentPage.InternalNode.IndexOfChild(oldMaxKey)].Key = maxAfterSplit

	if splittingRoot {
		return nil
	}

	return t.InternalNodeInsert(ctx, aSplitPage.InternalNode.Header.Parent, newPageIdx)
}

func (t *Table) GetMaxKey(ctx context.Context, aPage *Page) (uint32, error) {
	if aPage.LeafNode != nil {
		if aPage.LeafNode.Header.Cells == 0 {
			return 0, fmt.Errorf("get max key: leaf node has no cells")
		}
		return aPage.LeafNode.Cells[aPage.LeafNode.Header.Cells-1].Key, nil
	}
	rightChild, err := t.pager.GetPage(ctx, aPage.InternalNode.Header.RightChild)
	if err != nil {
		return 0, err
	}
	return t.GetMaxKey(ctx, rightChild)
}

type callback func(page *Page)

// BFS walks the tree breadth first, visiting every page with f.
func (t *Table) BFS(ctx context.Context, f callback) error {
	rootPage, err := t.pager.GetPage(ctx, t.RootPageIdx)
	if err != nil {
		return err
	}

	queue := make([]*Page, 0, 1)
	queue = append(queue, rootPage)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		f(current)

		if current.InternalNode != nil {
			for i := uint32(0); i < current.InternalNode.Header.KeysNum; i++ {
				iCell := current.InternalNode.ICells[i]
				aPage, err := t.pager.GetPage(ctx, iCell.Child)
				if err != nil {
					return err
				}
				queue = append(queue, aPage)
			}
			if current.InternalNode.Header.RightChild != RightChildNotSet {
				aPage, err := t.pager.GetPage(ctx, current.InternalNode.Header.RightChild)
				if err != nil {
					return err
				}
				queue = append(queue, aPage)
			}
		}
	}

	return nil
}

// PrintTree writes a breadth first dump of the tree to w, one block per page.
func (t *Table) PrintTree(ctx context.Context, w io.Writer) error {
	return t.BFS(ctx, func(aPage *Page) {
		if aPage.InternalNode != nil {
			fmt.Fprintln(w, "Internal node,", "page:", aPage.Index, "number of keys:", aPage.InternalNode.Header.KeysNum, "parent:", aPage.InternalNode.Header.Parent)
			fmt.Fprintln(w, "Keys:", aPage.InternalNode.Keys())
			fmt.Fprintln(w, "Children:", aPage.InternalNode.Children())
		} else {
			fmt.Fprintln(w, "Leaf node,", "page:", aPage.Index, "number of cells:", aPage.LeafNode.Header.Cells, "parent:", aPage.LeafNode.Header.Parent, "next leaf:", aPage.LeafNode.Header.NextLeaf)
			fmt.Fprintln(w, "Keys:", aPage.LeafNode.Keys())
		}
		fmt.Fprintln(w, "---------")
	})
}
