package storage

import (
	"encoding/binary"
	"sort"

	"github.com/pkg/errors"
	"nanodb/internal/record"
)

// nodeType discriminates a Page's variant via the first header byte.
// Per spec.md §3: 0 = internal, non-zero = leaf.
type nodeType uint8

const (
	nodeTypeInternal nodeType = 0
	nodeTypeLeaf     nodeType = 1
)

// Page is a fixed PageSize-byte buffer interpreted as either a leaf or
// internal B+tree node, per spec.md §3. It owns no I/O; every method here
// is a pure accessor or mutator over Buf.
type Page struct {
	Buf [PageSize]byte
}

// --- common header ---

func (p *Page) IsLeaf() bool {
	return nodeType(p.Buf[nodeTypeOffset]) != nodeTypeInternal
}

func (p *Page) IsRoot() bool {
	return p.Buf[isRootOffset] != 0
}

func (p *Page) SetIsRoot(v bool) {
	if v {
		p.Buf[isRootOffset] = 1
	} else {
		p.Buf[isRootOffset] = 0
	}
}

func (p *Page) Parent() PageIndex {
	return getPageIndex(p.Buf[parentOffset:])
}

func (p *Page) SetParent(v PageIndex) {
	putPageIndex(p.Buf[parentOffset:], v)
}

// --- leaf body ---

func (p *Page) NumCells() PageIndex {
	return getPageIndex(p.Buf[leafNumCellsOffset:])
}

func (p *Page) SetNumCells(v PageIndex) {
	putPageIndex(p.Buf[leafNumCellsOffset:], v)
}

func (p *Page) NextLeaf() PageIndex {
	return getPageIndex(p.Buf[leafNextLeafOffset:])
}

func (p *Page) SetNextLeaf(v PageIndex) {
	putPageIndex(p.Buf[leafNextLeafOffset:], v)
}

func (p *Page) leafCellOffset(cell int) int {
	return leafCellsStart + cell*LeafCellSize
}

// LeafKey returns the key of the cell-th leaf cell.
func (p *Page) LeafKey(cell int) PageIndex {
	off := p.leafCellOffset(cell)
	return getPageIndex(p.Buf[off:])
}

// SetLeafKey sets the key of the cell-th leaf cell.
func (p *Page) SetLeafKey(cell int, key PageIndex) {
	off := p.leafCellOffset(cell)
	putPageIndex(p.Buf[off:], key)
}

// LeafValue returns a mutable view over the record.Size bytes of the
// cell-th leaf cell's value.
func (p *Page) LeafValue(cell int) []byte {
	off := p.leafCellOffset(cell) + pageIndexSize
	return p.Buf[off : off+record.Size]
}

// LeafCellBytes returns a mutable view over the raw LeafCellSize bytes
// (key + value) of the cell-th leaf cell. Used by the split algorithm to
// copy whole cells between a frozen snapshot and live pages.
func (p *Page) LeafCellBytes(cell int) []byte {
	off := p.leafCellOffset(cell)
	return p.Buf[off : off+LeafCellSize]
}

// ShiftLeafCellsRight moves cells [from, numCells) one slot to the right,
// making room to insert at index from. numCells is the count before the
// shift.
func (p *Page) ShiftLeafCellsRight(from, numCells int) {
	if from >= numCells {
		return
	}
	off := p.leafCellOffset(from)
	n := (numCells - from) * LeafCellSize
	copy(p.Buf[off+LeafCellSize:off+LeafCellSize+n], p.Buf[off:off+n])
}

// LeafMaxKey returns the largest key stored in this leaf.
func (p *Page) LeafMaxKey() PageIndex {
	return p.LeafKey(int(p.NumCells()) - 1)
}

// LeafFind returns the index of key if present, or the slot it should be
// inserted at otherwise.
func (p *Page) LeafFind(key PageIndex) int {
	n := int(p.NumCells())
	return sort.Search(n, func(i int) bool {
		return p.LeafKey(i) >= key
	})
}

// --- internal body ---

func (p *Page) NumKeys() PageIndex {
	return getPageIndex(p.Buf[internalNumKeysOffset:])
}

func (p *Page) SetNumKeys(v PageIndex) {
	putPageIndex(p.Buf[internalNumKeysOffset:], v)
}

func (p *Page) RightChild() PageIndex {
	return getPageIndex(p.Buf[internalRightChildOffset:])
}

func (p *Page) SetRightChild(v PageIndex) {
	putPageIndex(p.Buf[internalRightChildOffset:], v)
}

func (p *Page) internalCellOffset(cell int) int {
	return internalCellsStart + cell*InternalCellSize
}

func (p *Page) InternalChild(cell int) PageIndex {
	off := p.internalCellOffset(cell)
	return getPageIndex(p.Buf[off:])
}

func (p *Page) SetInternalChild(cell int, child PageIndex) {
	off := p.internalCellOffset(cell)
	putPageIndex(p.Buf[off:], child)
}

func (p *Page) InternalKey(cell int) PageIndex {
	off := p.internalCellOffset(cell) + pageIndexSize
	return getPageIndex(p.Buf[off:])
}

func (p *Page) SetInternalKey(cell int, key PageIndex) {
	off := p.internalCellOffset(cell) + pageIndexSize
	putPageIndex(p.Buf[off:], key)
}

// GetInternalChild resolves child slot, treating slot == NumKeys as the
// right_child pointer.
func (p *Page) GetInternalChild(slot int) PageIndex {
	if slot == int(p.NumKeys()) {
		return p.RightChild()
	}
	return p.InternalChild(slot)
}

// InternalLastKey returns key[num_keys-1]; a convenience value, not the
// authoritative max_key of the subtree (spec.md §4.2).
func (p *Page) InternalLastKey() PageIndex {
	return p.InternalKey(int(p.NumKeys()) - 1)
}

// InternalFind returns the smallest slot in [0, num_keys] such that
// key <= key[slot] (num_keys meaning "descend into right_child").
func (p *Page) InternalFind(key PageIndex) int {
	n := int(p.NumKeys())
	return sort.Search(n, func(i int) bool {
		return key <= p.InternalKey(i)
	})
}

// InternalUpdateKey locates the slot whose separator equals oldKey and
// overwrites it with newKey.
func (p *Page) InternalUpdateKey(oldKey, newKey PageIndex) error {
	n := int(p.NumKeys())
	slot := sort.Search(n, func(i int) bool {
		return p.InternalKey(i) >= oldKey
	})
	if slot >= n || p.InternalKey(slot) != oldKey {
		return errors.Errorf("internal_update_key: old key %d not found", oldKey)
	}
	p.SetInternalKey(slot, newKey)
	return nil
}

// --- lifecycle ---

// InitLeaf zeroes the page, stamps it as a non-root leaf with no cells and
// no sibling.
func (p *Page) InitLeaf() {
	for i := range p.Buf {
		p.Buf[i] = 0
	}
	p.Buf[nodeTypeOffset] = byte(nodeTypeLeaf)
	p.SetIsRoot(false)
	p.SetNumCells(0)
	p.SetNextLeaf(0)
}

// InitInternal zeroes the page, stamps it as a non-root internal node with
// no keys and no right child.
func (p *Page) InitInternal() {
	for i := range p.Buf {
		p.Buf[i] = 0
	}
	p.Buf[nodeTypeOffset] = byte(nodeTypeInternal)
	p.SetIsRoot(false)
	p.SetNumKeys(0)
	p.SetRightChild(0)
}

func getPageIndex(b []byte) PageIndex {
	return PageIndex(binary.NativeEndian.Uint64(b[:pageIndexSize]))
}

func putPageIndex(b []byte, v PageIndex) {
	binary.NativeEndian.PutUint64(b[:pageIndexSize], uint64(v))
}
