package tinytable

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"tinytable/internal/pkg/logging"
)

//go:generate mockery --name=Pager --structname=MockPager --inpackage --case=snake --testonly

var (
	gen = newDataGen(time.Now().Unix())

	testLogger *zap.Logger
)

func init() {
	logConf := logging.DefaultConfig()
	logConf.Level = zap.NewAtomicLevelAt(zap.InfoLevel)

	var err error
	testLogger, err = logConf.Build()
	if err != nil {
		panic(err)
	}
}

type dataGen struct {
	*gofakeit.Faker
}

func newDataGen(seed int64) *dataGen {
	g := dataGen{
		Faker: gofakeit.New(seed),
	}

	return &g
}

func (g *dataGen) Row() Row {
	return Row{
		ID:       uint32(g.IntRange(1, 1000000)),
		Username: g.Username(),
		Email:    g.Email(),
	}
}

func (g *dataGen) RowWithID(id uint32) Row {
	aRow := g.Row()
	aRow.ID = id
	return aRow
}

func testRow(id uint32) Row {
	return Row{
		ID:       id,
		Username: fmt.Sprintf("user%d", id),
		Email:    fmt.Sprintf("user%d@example.com", id),
	}
}

func mustCell(id uint32) Cell {
	buf, err := testRow(id).Marshal()
	if err != nil {
		panic(err)
	}
	aCell := Cell{Key: id}
	copy(aCell.Value[:], buf)
	return aCell
}

func newRootLeafPageWithCells(cells int) *Page {
	aRootLeaf := NewLeafNode()
	aRootLeaf.Header.IsRoot = true
	aRootLeaf.Header.Cells = uint32(cells)

	for i := 0; i < cells; i++ {
		aRootLeaf.Cells[i] = mustCell(uint32(i))
	}

	return &Page{LeafNode: aRootLeaf}
}

/*
Below is a simple B tree for testing purposes

	           +-------------------+
	           |       *,5,*       |
	           +-------------------+
	          /                     \
	     +-------+                  +--------+
	     | *,2,* |                  | *,18,* |
	     +-------+                  +--------+
	    /         \                /          \
	 +-----+     +-----+     +---------+    +------+
	 | 1,2 |     |  5  |     |  12,18  |    |  21  |
	 +-----+     +-----+     +---------+    +------+
*/
func newTestBtree() (*Page, []*Page, []*Page) {
	var (
		// page 0
		aRootPage = &Page{
			Index: 0,
			InternalNode: &InternalNode{
				Header: InternalNodeHeader{
					Header: Header{
						IsInternal: true,
						IsRoot:     true,
					},
					KeysNum:    1,
					RightChild: 2, // page 2
				},
			},
		}
		// page 1
		internalPage1 = &Page{
			Index: 1,
			InternalNode: &InternalNode{
				Header: InternalNodeHeader{
					Header: Header{
						IsInternal: true,
						Parent:     0, // page 0
					},
					KeysNum:    1,
					RightChild: 4, // page 4
				},
			},
		}
		// page 2
		internalPage2 = &Page{
			Index: 2,
			InternalNode: &InternalNode{
				Header: InternalNodeHeader{
					Header: Header{
						IsInternal: true,
						Parent:     0,
					},
					KeysNum:    1,
					RightChild: 6, // page 6
				},
			},
		}
		// page 3
		leafPage1 = &Page{
			Index: 3,
			LeafNode: &LeafNode{
				Header: LeafNodeHeader{
					Header: Header{
						Parent: 1,
					},
					Cells:    2,
					NextLeaf: 4,
				},
			},
		}
		// page 4
		leafPage2 = &Page{
			Index: 4,
			LeafNode: &LeafNode{
				Header: LeafNodeHeader{
					Header: Header{
						Parent: 1,
					},
					Cells:    1,
					NextLeaf: 5,
				},
			},
		}
		// page 5
		leafPage3 = &Page{
			Index: 5,
			LeafNode: &LeafNode{
				Header: LeafNodeHeader{
					Header: Header{
						Parent: 2,
					},
					Cells:    2,
					NextLeaf: 6,
				},
			},
		}
		// page 6
		leafPage4 = &Page{
			Index: 6,
			LeafNode: &LeafNode{
				Header: LeafNodeHeader{
					Header: Header{
						Parent: 2,
					},
					Cells:    1,
					NextLeaf: 0,
				},
			},
		}
	)

	aRootPage.InternalNode.ICells[0] = ICell{Key: 5, Child: 1}
	internalPage1.InternalNode.ICells[0] = ICell{Key: 2, Child: 3}
	internalPage2.InternalNode.ICells[0] = ICell{Key: 18, Child: 5}

	leafPage1.LeafNode.Cells[0] = mustCell(1)
	leafPage1.LeafNode.Cells[1] = mustCell(2)
	leafPage2.LeafNode.Cells[0] = mustCell(5)
	leafPage3.LeafNode.Cells[0] = mustCell(12)
	leafPage3.LeafNode.Cells[1] = mustCell(18)
	leafPage4.LeafNode.Cells[0] = mustCell(21)

	return aRootPage,
		[]*Page{internalPage1, internalPage2},
		[]*Page{leafPage1, leafPage2, leafPage3, leafPage4}
}
