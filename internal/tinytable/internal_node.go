package tinytable

import (
	"math"
)

const (
	// Internal node header adds a key count to the common header. The
	// rightmost child pointer trails the packed cells on disk.
	InternalNodeHeaderSize = CommonNodeHeaderSize + 4

	// Each cell is a child page index followed by the maximum key stored
	// in that child's subtree.
	InternalNodeCellSize = 4 + 4
	InternalNodeMaxCells = (PageSize - InternalNodeHeaderSize - 4) / InternalNodeCellSize
)

// RightChildNotSet marks an internal node without a rightmost child, such
// a node is empty and only exists transiently during splits.
const RightChildNotSet = math.MaxUint32

type InternalNodeHeader struct {
	Header
	KeysNum    uint32
	RightChild uint32
}

func (h *InternalNodeHeader) Size() uint64 {
	return h.Header.Size() + 4
}

func (h *InternalNodeHeader) Marshal(buf []byte) ([]byte, error) {
	size := h.Size()
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}

	i := uint64(0)

	hbuf, err := h.Header.Marshal(buf[i:])
	if err != nil {
		return nil, err
	}
	i += uint64(len(hbuf))

	marshalUint32(buf, h.KeysNum, int(i))

	return buf[:size], nil
}

func (h *InternalNodeHeader) Unmarshal(buf []byte) (uint64, error) {
	i := uint64(0)

	hi, err := h.Header.Unmarshal(buf[i:])
	if err != nil {
		return 0, err
	}
	i += hi

	h.KeysNum = unmarshalUint32(buf, int(i))

	return h.Size(), nil
}

type ICell struct {
	Key   uint32
	Child uint32
}

func (c *ICell) Size() uint64 {
	return InternalNodeCellSize
}

func (c *ICell) Marshal(buf []byte) ([]byte, error) {
	size := c.Size()
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}

	marshalUint32(buf, c.Child, 0)
	marshalUint32(buf, c.Key, 4)

	return buf[:size], nil
}

func (c *ICell) Unmarshal(buf []byte) (uint64, error) {
	c.Child = unmarshalUint32(buf, 0)
	c.Key = unmarshalUint32(buf, 4)

	return c.Size(), nil
}

type InternalNode struct {
	Header InternalNodeHeader
	ICells [InternalNodeMaxCells]ICell
}

func NewInternalNode() *InternalNode {
	aNode := InternalNode{
		Header: InternalNodeHeader{
			Header: Header{
				IsInternal: true,
			},
			RightChild: RightChildNotSet,
		},
	}
	return &aNode
}

func (n *InternalNode) Size() uint64 {
	size := n.Header.Size()
	for idx := range n.ICells {
		size += n.ICells[idx].Size()
	}
	// Trailing right child pointer
	size += 4
	return size
}

func (n *InternalNode) Marshal(buf []byte) ([]byte, error) {
	size := n.Size()
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}

	i := uint64(0)

	hbuf, err := n.Header.Marshal(buf[i:])
	if err != nil {
		return nil, err
	}
	i += uint64(len(hbuf))

	for idx := range n.ICells[0:n.Header.KeysNum] {
		icbuf, err := n.ICells[idx].Marshal(buf[i:])
		if err != nil {
			return nil, err
		}
		i += uint64(len(icbuf))
	}

	marshalUint32(buf, n.Header.RightChild, int(i))
	i += 4

	return buf[:i], nil
}

func (n *InternalNode) Unmarshal(buf []byte) (uint64, error) {
	i := uint64(0)

	hi, err := n.Header.Unmarshal(buf[i:])
	if err != nil {
		return 0, err
	}
	i += hi

	for idx := range n.ICells[0:n.Header.KeysNum] {
		ci, err := n.ICells[idx].Unmarshal(buf[i:])
		if err != nil {
			return 0, err
		}
		i += ci
	}

	n.Header.RightChild = unmarshalUint32(buf, int(i))
	i += 4

	return i, nil
}
