package tinytable

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/multierr"
)

type DBFile interface {
	io.ReadSeeker
	io.ReaderAt
	io.WriterAt
	io.Closer
}

type pagerImpl struct {
	pageSize   int
	totalPages uint32 // total number of pages

	pages []*Page

	file     DBFile
	fileSize int64
}

// NewPager opens the database file and derives the page count from its
// length.
func NewPager(file DBFile, pageSize int) (*pagerImpl, error) {
	aPager := &pagerImpl{
		pageSize: pageSize,
		file:     file,
		pages:    make([]*Page, 0, MaxPages),
	}

	fileSize, err := aPager.file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	aPager.fileSize = fileSize

	// Basic check to verify file size is a multiple of page size (4096B)
	if fileSize%int64(pageSize) != 0 {
		return nil, fmt.Errorf("db file size is not divisible by page size: %d", fileSize)
	}

	totalPages := fileSize / int64(pageSize)
	if totalPages > MaxPages {
		return nil, fmt.Errorf("file size exceeds limit of %d pages", MaxPages)
	}
	aPager.totalPages = uint32(totalPages)

	return aPager, nil
}

func (p *pagerImpl) Close() error {
	return p.file.Close()
}

func (p *pagerImpl) TotalPages() uint32 {
	return p.totalPages
}

// GetPage returns the cached page for an index, loading it from the file on
// first access. Requesting the index one past the current total materializes
// a brand new zero filled page which starts out as an empty leaf.
func (p *pagerImpl) GetPage(ctx context.Context, pageIdx uint32) (*Page, error) {
	if pageIdx >= MaxPages {
		return nil, fmt.Errorf("page index %d reached limit of max pages %d", pageIdx, MaxPages)
	}

	if len(p.pages) > int(pageIdx) && p.pages[pageIdx] != nil {
		return p.pages[pageIdx], nil
	}

	if int(pageIdx) > int(p.totalPages) {
		return nil, fmt.Errorf("cannot skip index when getting page, index: %d, number of pages: %d", pageIdx, p.totalPages)
	}

	// Extend pages slice so that slice index = page index
	for i := len(p.pages); i < int(pageIdx)+1; i++ {
		p.pages = append(p.pages, nil)
	}

	if int(pageIdx) == int(p.totalPages) {
		// Requesting a new page
		p.pages[pageIdx] = &Page{Index: pageIdx, LeafNode: NewLeafNode()}
		p.totalPages = pageIdx + 1
	} else {
		// Page should exist, load it from the file. A short read beyond the
		// end of file leaves the rest of the buffer zero filled.
		buf := make([]byte, p.pageSize)
		offset := int64(pageIdx) * int64(p.pageSize)
		if _, err := p.file.ReadAt(buf, offset); err != nil && err != io.EOF {
			return nil, fmt.Errorf("read page %d: %w", pageIdx, err)
		}

		aPage, err := unmarshalPage(pageIdx, buf)
		if err != nil {
			return nil, err
		}
		p.pages[pageIdx] = aPage
	}

	if pageIdx == 0 {
		if p.pages[pageIdx].LeafNode != nil {
			p.pages[pageIdx].LeafNode.Header.IsRoot = true
		}
		if p.pages[pageIdx].InternalNode != nil {
			p.pages[pageIdx].InternalNode.Header.IsRoot = true
		}
	}

	return p.pages[pageIdx], nil
}

// Flush writes the full page buffer at its file offset. Flushing a page that
// was never loaded is an error, there is nothing to write.
func (p *pagerImpl) Flush(ctx context.Context, pageIdx uint32) error {
	if int(pageIdx) >= len(p.pages) || p.pages[pageIdx] == nil {
		return fmt.Errorf("flushing page %d that was never loaded", pageIdx)
	}

	aPage := p.pages[pageIdx]

	buf := make([]byte, p.pageSize)
	if _, err := marshalPage(aPage, buf); err != nil {
		return err
	}

	_, err := p.file.WriteAt(buf, int64(pageIdx)*int64(p.pageSize))
	return err
}

// FlushAll writes every resident page back to the file. Pages that were
// never loaded are skipped, their on disk bytes are already current.
func (p *pagerImpl) FlushAll(ctx context.Context) error {
	var err error
	for pageIdx := uint32(0); pageIdx < p.totalPages; pageIdx++ {
		if int(pageIdx) >= len(p.pages) || p.pages[pageIdx] == nil {
			continue
		}
		err = multierr.Append(err, p.Flush(ctx, pageIdx))
	}
	return err
}

func unmarshalPage(pageIdx uint32, buf []byte) (*Page, error) {
	if unmarshalUint32(buf, 0) == nodeTypeLeaf {
		leaf := NewLeafNode()
		if _, err := leaf.Unmarshal(buf); err != nil {
			return nil, err
		}
		return &Page{Index: pageIdx, LeafNode: leaf}, nil
	}

	internal := new(InternalNode)
	if _, err := internal.Unmarshal(buf); err != nil {
		return nil, err
	}
	return &Page{Index: pageIdx, InternalNode: internal}, nil
}

func marshalPage(aPage *Page, buf []byte) ([]byte, error) {
	if aPage.LeafNode != nil {
		data, err := aPage.LeafNode.Marshal(buf)
		if err != nil {
			return nil, err
		}
		return data, nil
	} else if aPage.InternalNode != nil {
		data, err := aPage.InternalNode.Marshal(buf)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	return nil, fmt.Errorf("error flushing, page %d is neither internal nor leaf node", aPage.Index)
}
