package storage

import (
	"nanodb/internal/record"

	"github.com/pkg/errors"
)

// Cursor is a logical (page_num, cell_num) position over one table's
// leaves. Advancing follows sibling pointers; per spec.md §4.4.
type Cursor struct {
	table      *Table
	PageNum    PageIndex
	CellNum    int
	EndOfTable bool
}

// AtStart positions a cursor at the leftmost leaf's first cell.
func AtStart(t *Table) (*Cursor, error) {
	leafPageNum, cell, err := t.find(0, t.rootPageNum)
	if err != nil {
		return nil, err
	}
	page, err := t.pager.GetPage(leafPageNum)
	if err != nil {
		return nil, err
	}
	return &Cursor{
		table:      t,
		PageNum:    leafPageNum,
		CellNum:    cell,
		EndOfTable: page.NumCells() == 0,
	}, nil
}

// AtPos positions a cursor exactly at (pageNum, cellNum).
func AtPos(t *Table, pageNum PageIndex, cellNum int) (*Cursor, error) {
	page, err := t.pager.GetPage(pageNum)
	if err != nil {
		return nil, err
	}
	return &Cursor{
		table:      t,
		PageNum:    pageNum,
		CellNum:    cellNum,
		EndOfTable: page.NextLeaf() == 0 && cellNum == int(page.NumCells()),
	}, nil
}

// Read deserializes the record at the cursor's current position.
func (c *Cursor) Read() (record.Record, error) {
	page, err := c.table.pager.GetPage(c.PageNum)
	if err != nil {
		return record.Record{}, err
	}
	return record.Deserialize(page.LeafValue(c.CellNum))
}

// Advance moves the cursor to the next cell, following next_leaf at a
// leaf boundary. Sets EndOfTable once the rightmost leaf is exhausted.
func (c *Cursor) Advance() error {
	page, err := c.table.pager.GetPage(c.PageNum)
	if err != nil {
		return err
	}
	c.CellNum++
	if c.CellNum >= int(page.NumCells()) {
		next := page.NextLeaf()
		if next == 0 {
			c.EndOfTable = true
		} else {
			c.PageNum = next
			c.CellNum = 0
		}
	}
	return nil
}

// LeafInsert writes (key, rec) at the cursor's position, shifting later
// cells right, or splits the leaf if it is full.
func (c *Cursor) LeafInsert(key PageIndex, rec record.Record) error {
	page, err := c.table.pager.GetPage(c.PageNum)
	if err != nil {
		return err
	}
	if int(page.NumCells()) >= LeafMaxCells {
		return c.leafSplitAndInsert(key, rec)
	}

	numCells := int(page.NumCells())
	page.ShiftLeafCellsRight(c.CellNum, numCells)
	page.SetLeafKey(c.CellNum, key)
	if err := record.Serialize(rec, page.LeafValue(c.CellNum)); err != nil {
		return err
	}
	page.SetNumCells(PageIndex(numCells + 1))
	return nil
}

// leafSplitAndInsert implements spec.md §4.4's leaf split algorithm: the
// full leaf (LeafMaxCells cells) plus the incoming cell are redistributed,
// in key order, across the original leaf (now the left sibling) and a
// freshly allocated right sibling, then the split is propagated to the
// parent (or promotes a new root).
func (c *Cursor) leafSplitAndInsert(key PageIndex, rec record.Record) error {
	t := c.table
	oldPageNum := c.PageNum

	oldPage, err := t.pager.GetPage(oldPageNum)
	if err != nil {
		return err
	}

	// Snapshot the old leaf's bytes before any mutation, per spec.md §4.4
	// step 2: later reads of "old cell i" must see pre-split state even
	// though writes land in the very same buffer for the left half.
	snapshot := &Page{Buf: oldPage.Buf}
	oldNextLeaf := snapshot.NextLeaf()
	oldParent := snapshot.Parent()
	wasRoot := snapshot.IsRoot()
	oldMaxKey := snapshot.LeafMaxKey()

	newPageNum := t.pager.GetUnusedPageNum()
	t.pager.SetNumPages(t.pager.NumPages() + 1)
	newPage, err := t.pager.GetPage(newPageNum)
	if err != nil {
		return err
	}
	newPage.InitLeaf()

	var newCell [LeafCellSize]byte
	putPageIndex(newCell[:pageIndexSize], key)
	if err := record.Serialize(rec, newCell[pageIndexSize:]); err != nil {
		return err
	}

	total := LeafMaxCells + 1
	for i := total - 1; i >= 0; i-- {
		var dest *Page
		destIdx := i
		if i < LeafLeftSplitCount {
			dest = oldPage
		} else {
			dest = newPage
			destIdx = i - LeafLeftSplitCount
		}

		switch {
		case i == c.CellNum:
			copy(dest.LeafCellBytes(destIdx), newCell[:])
		case i > c.CellNum:
			copy(dest.LeafCellBytes(destIdx), snapshot.LeafCellBytes(i-1))
		default:
			copy(dest.LeafCellBytes(destIdx), snapshot.LeafCellBytes(i))
		}
	}

	newPage.SetNumCells(PageIndex(LeafRightSplitCount))
	newPage.SetNextLeaf(oldNextLeaf)
	newPage.SetParent(oldParent)

	oldPage.SetNumCells(PageIndex(LeafLeftSplitCount))
	oldPage.SetNextLeaf(newPageNum)

	if wasRoot {
		return t.NewRoot(newPageNum)
	}

	newMaxKey := oldPage.LeafMaxKey()
	parentPage, err := t.pager.GetPage(oldParent)
	if err != nil {
		return err
	}
	// Only non-rightmost children have a separator in the parent; when the
	// split leaf is the parent's right child there is no key to update.
	if parentPage.RightChild() != oldPageNum {
		if err := parentPage.InternalUpdateKey(oldMaxKey, newMaxKey); err != nil {
			return errors.Wrap(err, "leaf split: update parent separator")
		}
	}
	return t.InternalInsert(oldParent, newPageNum)
}
