package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nanodb/internal/record"
)

func TestPageLeafHeaderAccessors(t *testing.T) {
	var p Page
	p.InitLeaf()

	assert.True(t, p.IsLeaf())
	assert.False(t, p.IsRoot())
	p.SetIsRoot(true)
	assert.True(t, p.IsRoot())

	p.SetParent(7)
	assert.Equal(t, PageIndex(7), p.Parent())

	p.SetNextLeaf(42)
	assert.Equal(t, PageIndex(42), p.NextLeaf())
}

func TestPageLeafCellRoundTrip(t *testing.T) {
	var p Page
	p.InitLeaf()

	rec := record.Record{ID: 3, Username: "bob", Email: "bob@example.com"}
	p.SetLeafKey(0, 3)
	require.NoError(t, record.Serialize(rec, p.LeafValue(0)))
	p.SetNumCells(1)

	assert.Equal(t, PageIndex(3), p.LeafKey(0))
	got, err := record.Deserialize(p.LeafValue(0))
	require.NoError(t, err)
	assert.Equal(t, rec, got)
	assert.Equal(t, PageIndex(3), p.LeafMaxKey())
}

func TestPageLeafFindLocatesOrInsertionSlot(t *testing.T) {
	var p Page
	p.InitLeaf()
	for i, key := range []PageIndex{1, 3, 5} {
		p.SetLeafKey(i, key)
	}
	p.SetNumCells(3)

	assert.Equal(t, 1, p.LeafFind(3))
	assert.Equal(t, 0, p.LeafFind(0))
	assert.Equal(t, 3, p.LeafFind(9))
	assert.Equal(t, 1, p.LeafFind(2))
}

func TestPageShiftLeafCellsRightPreservesCells(t *testing.T) {
	var p Page
	p.InitLeaf()
	for i, key := range []PageIndex{1, 2, 3} {
		p.SetLeafKey(i, key)
	}
	p.SetNumCells(3)

	p.ShiftLeafCellsRight(1, 3)
	p.SetLeafKey(1, 99)

	assert.Equal(t, PageIndex(1), p.LeafKey(0))
	assert.Equal(t, PageIndex(99), p.LeafKey(1))
	assert.Equal(t, PageIndex(2), p.LeafKey(2))
	assert.Equal(t, PageIndex(3), p.LeafKey(3))
}

func TestPageInternalAccessorsAndFind(t *testing.T) {
	var p Page
	p.InitInternal()

	p.SetNumKeys(2)
	p.SetInternalChild(0, 10)
	p.SetInternalKey(0, 5)
	p.SetInternalChild(1, 11)
	p.SetInternalKey(1, 9)
	p.SetRightChild(12)

	assert.Equal(t, PageIndex(10), p.GetInternalChild(0))
	assert.Equal(t, PageIndex(11), p.GetInternalChild(1))
	assert.Equal(t, PageIndex(12), p.GetInternalChild(2))
	assert.Equal(t, PageIndex(9), p.InternalLastKey())

	assert.Equal(t, 0, p.InternalFind(5))
	assert.Equal(t, 1, p.InternalFind(6))
	assert.Equal(t, 2, p.InternalFind(100))
}

func TestPageInternalUpdateKey(t *testing.T) {
	var p Page
	p.InitInternal()
	p.SetNumKeys(1)
	p.SetInternalChild(0, 1)
	p.SetInternalKey(0, 5)
	p.SetRightChild(2)

	require.NoError(t, p.InternalUpdateKey(5, 8))
	assert.Equal(t, PageIndex(8), p.InternalKey(0))

	err := p.InternalUpdateKey(5, 3)
	assert.Error(t, err)
}
