// Package tinytable implements a single file, single table storage engine.
// Rows keyed by an integer ID are stored in a disk backed B-tree accessed
// through a page cache.
package tinytable

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey is returned by Insert when a row with the same ID
	// already exists. The tree is left unchanged.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrUsernameTooLong is returned when a username does not fit into its
	// fixed width field.
	ErrUsernameTooLong = errors.New("username exceeds maximum length")
	// ErrEmailTooLong is returned when an email does not fit into its
	// fixed width field.
	ErrEmailTooLong = errors.New("email exceeds maximum length")
)

// Constants reports the fixed sizes of the on disk layout. They are derived
// once at compile time from the page size and the row width.
type Constants struct {
	RowSize                int
	CommonNodeHeaderSize   int
	LeafNodeHeaderSize     int
	LeafNodeCellSize       int
	LeafNodeSpaceForCells  int
	LeafNodeMaxCells       int
	InternalNodeHeaderSize int
	InternalNodeCellSize   int
	InternalNodeMaxCells   int
}

func LayoutConstants() Constants {
	return Constants{
		RowSize:                RowSize,
		CommonNodeHeaderSize:   CommonNodeHeaderSize,
		LeafNodeHeaderSize:     LeafNodeHeaderSize,
		LeafNodeCellSize:       LeafNodeCellSize,
		LeafNodeSpaceForCells:  LeafNodeSpaceForCells,
		LeafNodeMaxCells:       LeafNodeMaxCells,
		InternalNodeHeaderSize: InternalNodeHeaderSize,
		InternalNodeCellSize:   InternalNodeCellSize,
		InternalNodeMaxCells:   InternalNodeMaxCells,
	}
}

func (c Constants) String() string {
	return fmt.Sprintf(
		"row size: %d\n"+
			"common node header size: %d\n"+
			"leaf node header size: %d\n"+
			"leaf node cell size: %d\n"+
			"leaf node space for cells: %d\n"+
			"leaf node max cells: %d\n"+
			"internal node header size: %d\n"+
			"internal node cell size: %d\n"+
			"internal node max cells: %d\n",
		c.RowSize,
		c.CommonNodeHeaderSize,
		c.LeafNodeHeaderSize,
		c.LeafNodeCellSize,
		c.LeafNodeSpaceForCells,
		c.LeafNodeMaxCells,
		c.InternalNodeHeaderSize,
		c.InternalNodeCellSize,
		c.InternalNodeMaxCells,
	)
}

func marshalUint32(buf []byte, value uint32, offset int) {
	buf[offset+0] = byte(value >> 0)
	buf[offset+1] = byte(value >> 8)
	buf[offset+2] = byte(value >> 16)
	buf[offset+3] = byte(value >> 24)
}

func unmarshalUint32(buf []byte, offset int) uint32 {
	return 0 |
		(uint32(buf[offset+0]) << 0) |
		(uint32(buf[offset+1]) << 8) |
		(uint32(buf[offset+2]) << 16) |
		(uint32(buf[offset+3]) << 24)
}
