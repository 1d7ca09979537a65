package storage

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Pager is a bounded, slot-indexed cache of pages backed by one file. It
// reads lazily on cache miss and only ever writes on an explicit Flush; it
// never evicts. Exceeding MaxPages is fatal (spec.md §4.3).
type Pager struct {
	file       *os.File
	fileLength int64
	numPages   PageIndex
	pages      [MaxPages]*Page
	log        *zap.Logger
}

// OpenPager opens (creating if necessary) the database file at path. It is
// fatal (returns ErrCorruptFile) if the file's length is not a multiple of
// PageSize.
func OpenPager(path string, log *zap.Logger) (*Pager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, errors.Wrap(err, "open database file")
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "stat database file")
	}
	length := fi.Size()
	if length%PageSize != 0 {
		f.Close()
		return nil, errors.Wrapf(ErrCorruptFile, "file length %d is not a multiple of page size %d", length, PageSize)
	}
	p := &Pager{
		file:       f,
		fileLength: length,
		numPages:   PageIndex(length / PageSize),
		log:        log,
	}
	log.Debug("opened pager", zap.String("path", path), zap.Uint64("num_pages", uint64(p.numPages)))
	return p, nil
}

// NumPages reports how many pages the table currently spans.
func (p *Pager) NumPages() PageIndex {
	return p.numPages
}

// SetNumPages overrides the page count. Callers allocating a fresh page
// must bump this themselves; GetPage only advances it on an actual disk
// read past what was previously known (spec.md §4.3).
func (p *Pager) SetNumPages(n PageIndex) {
	p.numPages = n
}

// GetUnusedPageNum returns the page number that the next allocation would
// use. There is no free list; new pages always append.
func (p *Pager) GetUnusedPageNum() PageIndex {
	return p.numPages
}

// GetPage returns the resident page at n, reading it from disk on first
// access. A short read is fatal. n >= MaxPages is fatal.
func (p *Pager) GetPage(n PageIndex) (*Page, error) {
	if n >= MaxPages {
		return nil, errors.Wrapf(ErrOutOfPages, "page %d exceeds MaxPages %d", n, MaxPages)
	}
	if p.pages[n] != nil {
		return p.pages[n], nil
	}

	page := &Page{}
	if n < PageIndex(p.fileLength/PageSize) {
		off := int64(n) * PageSize
		if _, err := p.file.Seek(off, io.SeekStart); err != nil {
			return nil, errors.Wrapf(err, "seek to page %d", n)
		}
		r, err := io.ReadFull(p.file, page.Buf[:])
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.Wrapf(err, "read page %d", n)
		}
		if r != 0 && r != PageSize {
			return nil, errors.Wrapf(ErrCorruptFile, "partial read of page %d (%d of %d bytes)", n, r, PageSize)
		}
		if n >= p.numPages {
			p.numPages = n + 1
		}
	}

	p.pages[n] = page
	return page, nil
}

// Flush writes the resident page at n back to disk and clears its slot.
// A no-op if the slot is empty.
func (p *Pager) Flush(n PageIndex) error {
	page := p.pages[n]
	if page == nil {
		return nil
	}
	off := int64(n) * PageSize
	if _, err := p.file.Seek(off, io.SeekStart); err != nil {
		return errors.Wrapf(err, "seek to page %d", n)
	}
	if _, err := p.file.Write(page.Buf[:]); err != nil {
		return errors.Wrapf(err, "write page %d", n)
	}
	if newLen := off + PageSize; newLen > p.fileLength {
		p.fileLength = newLen
	}
	p.pages[n] = nil
	return nil
}

// CopyPage returns a deep copy of the resident page at n, used by root
// promotion to relocate the old root's bytes without aliasing them.
func (p *Pager) CopyPage(n PageIndex) (*Page, error) {
	src := p.pages[n]
	if src == nil {
		return nil, errors.Errorf("copy_page: page %d is not resident", n)
	}
	dst := &Page{}
	dst.Buf = src.Buf
	return dst, nil
}

// CloseFile closes the underlying file descriptor. Callers must Flush
// every resident page first.
func (p *Pager) CloseFile() error {
	return p.file.Close()
}
