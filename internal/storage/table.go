package storage

import (
	"nanodb/internal/record"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Table owns a pager and the B+tree rooted at page 0. It implements the
// recursive search, duplicate-checked insert, root promotion, and parent
// maintenance described in spec.md §4.5.
type Table struct {
	pager       *Pager
	rootPageNum PageIndex
	log         *zap.Logger
	sessionID   string
}

// OpenTable opens (or creates) the database file at path.
func OpenTable(path string, log *zap.Logger) (*Table, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pager, err := OpenPager(path, log)
	if err != nil {
		return nil, err
	}
	t := &Table{
		pager:     pager,
		log:       log,
		sessionID: uuid.NewString(),
	}
	if pager.NumPages() == 0 {
		root, err := pager.GetPage(0)
		if err != nil {
			return nil, err
		}
		root.InitLeaf()
		root.SetIsRoot(true)
		pager.SetNumPages(1)
	}
	t.log.Debug("opened table", zap.String("sid", t.sessionID), zap.String("path", path))
	return t, nil
}

// Close flushes every resident page, in page-number order, and closes the
// backing file. Every insert that returned successfully before Close is
// observed by it (spec.md §5).
func (t *Table) Close() error {
	for i := PageIndex(0); i < t.pager.NumPages(); i++ {
		if err := t.pager.Flush(i); err != nil {
			return errors.Wrapf(err, "flush page %d", i)
		}
	}
	return t.pager.CloseFile()
}

// find recursively descends from pageNum to the leaf that would hold key,
// returning that leaf's page number and the cell index leaf_find resolves
// to (either key's position, or its insertion slot).
func (t *Table) find(key PageIndex, pageNum PageIndex) (PageIndex, int, error) {
	page, err := t.pager.GetPage(pageNum)
	if err != nil {
		return 0, 0, err
	}
	if page.IsLeaf() {
		return pageNum, page.LeafFind(key), nil
	}
	slot := page.InternalFind(key)
	child := page.GetInternalChild(slot)
	return t.find(key, child)
}

// maxKey returns the largest key stored under the subtree rooted at
// pageNum: for a leaf, its last cell's key; for an internal node, the
// max_key of its rightmost child (spec.md §3).
func (t *Table) maxKey(pageNum PageIndex) (PageIndex, error) {
	page, err := t.pager.GetPage(pageNum)
	if err != nil {
		return 0, err
	}
	if page.IsLeaf() {
		return page.LeafMaxKey(), nil
	}
	return t.maxKey(page.RightChild())
}

// Insert adds rec to the tree, failing with a *DuplicateKeyError if its id
// already exists.
func (t *Table) Insert(rec record.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	key := PageIndex(rec.ID)
	leafPageNum, cell, err := t.find(key, t.rootPageNum)
	if err != nil {
		return err
	}
	page, err := t.pager.GetPage(leafPageNum)
	if err != nil {
		return err
	}
	if cell < int(page.NumCells()) && page.LeafKey(cell) == key {
		return NewDuplicateKeyError(rec.ID)
	}

	cur, err := AtPos(t, leafPageNum, cell)
	if err != nil {
		return err
	}
	if err := cur.LeafInsert(key, rec); err != nil {
		return err
	}
	t.log.Debug("inserted record", zap.String("sid", t.sessionID), zap.Uint32("id", rec.ID))
	return nil
}

// Scan yields every record in ascending key order by calling yield once
// per row. It stops early and returns yield's error if yield returns one.
func (t *Table) Scan(yield func(record.Record) error) error {
	cur, err := AtStart(t)
	if err != nil {
		return err
	}
	for !cur.EndOfTable {
		rec, err := cur.Read()
		if err != nil {
			return err
		}
		if err := yield(rec); err != nil {
			return err
		}
		if err := cur.Advance(); err != nil {
			return err
		}
	}
	return nil
}

// NewRoot promotes a new internal root after the old root (a leaf) split,
// relocating the old root's contents to a freshly allocated left child and
// pointing the root at [left, rightChildPage]. See spec.md §4.5 and the
// ordering decision recorded in DESIGN.md for why the unused page number
// is captured before num_pages is bumped.
func (t *Table) NewRoot(rightChildPage PageIndex) error {
	leftChildPage := t.pager.GetUnusedPageNum()

	rootCopy, err := t.pager.CopyPage(t.rootPageNum)
	if err != nil {
		return err
	}

	t.pager.SetNumPages(t.pager.NumPages() + 1)

	leftChild, err := t.pager.GetPage(leftChildPage)
	if err != nil {
		return err
	}
	leftChild.Buf = rootCopy.Buf
	leftChild.SetIsRoot(false)
	leftChild.SetParent(t.rootPageNum)
	leftMaxKey, err := t.maxKey(leftChildPage)
	if err != nil {
		return err
	}

	rightChild, err := t.pager.GetPage(rightChildPage)
	if err != nil {
		return err
	}
	rightChild.SetParent(t.rootPageNum)

	root, err := t.pager.GetPage(t.rootPageNum)
	if err != nil {
		return err
	}
	root.InitInternal()
	root.SetIsRoot(true)
	root.SetNumKeys(1)
	root.SetInternalChild(0, leftChildPage)
	root.SetInternalKey(0, leftMaxKey)
	root.SetRightChild(rightChildPage)
	return nil
}

// InternalInsert inserts childPage into parentPage's cells, preserving key
// order, per spec.md §4.5. Splitting an internal node is unimplemented:
// inserting beyond the first internal split surfaces ErrSplitInternalUnimplemented.
func (t *Table) InternalInsert(parentPage, childPage PageIndex) error {
	parent, err := t.pager.GetPage(parentPage)
	if err != nil {
		return err
	}
	childMax, err := t.maxKey(childPage)
	if err != nil {
		return err
	}
	n := int(parent.NumKeys())
	// spec.md §9 resolves the increment-vs-check ordering ambiguity here:
	// the check guards the post-insert cell count against InternalMaxCells
	// before any mutation, rather than against the stale pre-increment
	// count (see DESIGN.md).
	if n+1 > InternalMaxCells {
		return ErrSplitInternalUnimplemented
	}
	slot := parent.InternalFind(childMax)
	parent.SetNumKeys(PageIndex(n + 1))

	rightChild := parent.RightChild()
	rightMax, err := t.maxKey(rightChild)
	if err != nil {
		return err
	}

	if childMax > rightMax {
		parent.SetInternalChild(n, rightChild)
		parent.SetInternalKey(n, rightMax)
		parent.SetRightChild(childPage)
	} else {
		shiftInternalCellsRight(parent, slot, n)
		parent.SetInternalChild(slot, childPage)
		parent.SetInternalKey(slot, childMax)
	}
	return nil
}

func shiftInternalCellsRight(p *Page, from, numKeys int) {
	for i := numKeys; i > from; i-- {
		p.SetInternalChild(i, p.InternalChild(i-1))
		p.SetInternalKey(i, p.InternalKey(i-1))
	}
}
