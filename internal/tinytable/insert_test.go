package tinytable

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTestTable(t *testing.T) (*Table, *pagerImpl) {
	t.Helper()

	dbFile, err := os.CreateTemp("", "testdb")
	require.NoError(t, err)
	t.Cleanup(func() {
		dbFile.Close()
		os.Remove(dbFile.Name())
	})

	aPager, err := NewPager(dbFile, PageSize)
	require.NoError(t, err)

	return NewTable(testLogger, TableName, aPager, 0), aPager
}

func collectRows(t *testing.T, ctx context.Context, aTable *Table) []Row {
	t.Helper()

	aResult, err := aTable.Select(ctx)
	require.NoError(t, err)

	var rows []Row
	aRow, err := aResult.Rows(ctx)
	for ; err == nil; aRow, err = aResult.Rows(ctx) {
		rows = append(rows, aRow)
	}
	require.ErrorIs(t, err, ErrNoMoreRows)

	return rows
}

func TestTable_Insert(t *testing.T) {
	t.Parallel()

	var (
		ctx       = context.Background()
		aTable, _ = initTestTable(t)
	)

	aRow := gen.Row()
	require.NoError(t, aTable.Insert(ctx, aRow))

	rows := collectRows(t, ctx, aTable)
	require.Len(t, rows, 1)
	assert.Equal(t, aRow, rows[0])
}

func TestTable_Insert_DuplicateKey(t *testing.T) {
	t.Parallel()

	var (
		ctx       = context.Background()
		aTable, _ = initTestTable(t)
	)

	require.NoError(t, aTable.Insert(ctx, testRow(1)))

	err := aTable.Insert(ctx, testRow(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))

	// The tree is left unchanged
	rows := collectRows(t, ctx, aTable)
	require.Len(t, rows, 1)
	assert.Equal(t, testRow(1), rows[0])
}

func TestTable_Insert_InvalidRow(t *testing.T) {
	t.Parallel()

	var (
		ctx       = context.Background()
		aTable, _ = initTestTable(t)
	)

	aRow := testRow(1)
	aRow.Email = string(make([]byte, MaxEmailLength+1))
	require.ErrorIs(t, aTable.Insert(ctx, aRow), ErrEmailTooLong)
}

func TestTable_Insert_FillRootLeaf(t *testing.T) {
	t.Parallel()

	var (
		ctx           = context.Background()
		aTable, pager = initTestTable(t)
	)

	for id := uint32(1); id <= LeafNodeMaxCells; id++ {
		require.NoError(t, aTable.Insert(ctx, testRow(id)))
	}

	// Everything still fits into the root leaf
	assert.Equal(t, 1, int(pager.TotalPages()))

	rows := collectRows(t, ctx, aTable)
	require.Len(t, rows, LeafNodeMaxCells)
}

func TestTable_Insert_SplitRootLeaf(t *testing.T) {
	t.Parallel()

	var (
		ctx           = context.Background()
		aTable, pager = initTestTable(t)
		numRows       = LeafNodeMaxCells + 1
	)

	for id := 1; id <= numRows; id++ {
		require.NoError(t, aTable.Insert(ctx, testRow(uint32(id))))
	}

	// Root leaf split into an internal root with two leaf children, the
	// right sibling is page 1 and the copied left child is page 2
	require.Equal(t, 3, int(pager.TotalPages()))

	aRootPage, err := pager.GetPage(ctx, 0)
	require.NoError(t, err)
	require.NotNil(t, aRootPage.InternalNode)
	assert.True(t, aRootPage.InternalNode.Header.IsRoot)
	assert.Equal(t, 1, int(aRootPage.InternalNode.Header.KeysNum))
	assert.Equal(t, 2, int(aRootPage.InternalNode.ICells[0].Child))
	assert.Equal(t, 1, int(aRootPage.InternalNode.Header.RightChild))

	aLeftPage, err := pager.GetPage(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, aLeftPage.LeafNode)
	assert.Equal(t, LeafNodeLeftSplitCount, int(aLeftPage.LeafNode.Header.Cells))
	assert.Equal(t, 1, int(aLeftPage.LeafNode.Header.NextLeaf))
	assert.Equal(t, 0, int(aLeftPage.LeafNode.Header.Parent))

	aRightPage, err := pager.GetPage(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, aRightPage.LeafNode)
	assert.Equal(t, LeafNodeRightSplitCount, int(aRightPage.LeafNode.Header.Cells))
	assert.Equal(t, 0, int(aRightPage.LeafNode.Header.NextLeaf))
	assert.Equal(t, 0, int(aRightPage.LeafNode.Header.Parent))

	// All rows still come back in key order
	rows := collectRows(t, ctx, aTable)
	require.Len(t, rows, numRows)
	for i, aRow := range rows {
		assert.Equal(t, uint32(i+1), aRow.ID)
	}
}
