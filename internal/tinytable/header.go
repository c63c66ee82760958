package tinytable

const (
	nodeTypeInternal = 0
	nodeTypeLeaf     = 1

	// CommonNodeHeaderSize is the width of the header shared by leaf and
	// internal nodes: node type, is-root flag and parent page index, each
	// a little endian uint32, in that order at the start of the page.
	CommonNodeHeaderSize = 12
)

type Header struct {
	IsInternal bool
	IsRoot     bool
	Parent     uint32
}

func (h *Header) Size() uint64 {
	return CommonNodeHeaderSize
}

func (h *Header) Marshal(buf []byte) ([]byte, error) {
	size := h.Size()
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}

	nodeType := uint32(nodeTypeLeaf)
	if h.IsInternal {
		nodeType = nodeTypeInternal
	}
	marshalUint32(buf, nodeType, 0)

	isRoot := uint32(0)
	if h.IsRoot {
		isRoot = 1
	}
	marshalUint32(buf, isRoot, 4)

	marshalUint32(buf, h.Parent, 8)

	return buf[:size], nil
}

func (h *Header) Unmarshal(buf []byte) (uint64, error) {
	h.IsInternal = unmarshalUint32(buf, 0) == nodeTypeInternal
	h.IsRoot = unmarshalUint32(buf, 4) == 1
	h.Parent = unmarshalUint32(buf, 8)

	return h.Size(), nil
}
