package tinytable

const (
	PageSize = 4096 // 4 kilobytes
	// MaxPages caps how many pages a single database file can hold. The
	// page cache never evicts, the cap keeps its memory use bounded.
	MaxPages = 1000
)

type Page struct {
	Index        uint32
	InternalNode *InternalNode
	LeafNode     *LeafNode
}

func (p *Page) setParent(parentIdx uint32) {
	if p.LeafNode != nil {
		p.LeafNode.Header.Parent = parentIdx
	} else if p.InternalNode != nil {
		p.InternalNode.Header.Parent = parentIdx
	}
}
