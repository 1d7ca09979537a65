package storage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nanodb/internal/record"
)

func TestInsertThenScanReturnsInAscendingOrder(t *testing.T) {
	table := newTestTable(t)
	ids := []uint32{5, 1, 4, 2, 3}
	for _, id := range ids {
		require.NoError(t, table.Insert(record.Record{ID: id, Username: "u", Email: "u@example.com"}))
	}

	var got []uint32
	require.NoError(t, table.Scan(func(r record.Record) error {
		got = append(got, r.ID)
		return nil
	}))
	assert.Equal(t, []uint32{1, 2, 3, 4, 5}, got)
}

func TestInsertDuplicateKeyIsRejectedWithoutMutatingTree(t *testing.T) {
	table := newTestTable(t)
	require.NoError(t, table.Insert(record.Record{ID: 1, Username: "ann", Email: "ann@example.com"}))

	err := table.Insert(record.Record{ID: 1, Username: "bob", Email: "bob@example.com"})
	require.Error(t, err)
	var dupErr *DuplicateKeyError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, uint32(1), dupErr.Key)
	assert.Equal(t, "duplicate key '1'", err.Error())

	var got []record.Record
	require.NoError(t, table.Scan(func(r record.Record) error {
		got = append(got, r)
		return nil
	}))
	require.Len(t, got, 1)
	assert.Equal(t, "ann", got[0].Username)
}

func TestInsertRejectsOversizeFields(t *testing.T) {
	table := newTestTable(t)
	longUsername := make([]byte, record.MaxUsernameLen+1)
	for i := range longUsername {
		longUsername[i] = 'a'
	}
	err := table.Insert(record.Record{ID: 1, Username: string(longUsername), Email: "a@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long for username")
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := tempDBPath(t)

	table, err := OpenTable(path, nil)
	require.NoError(t, err)
	for _, id := range []uint32{3, 1, 2} {
		require.NoError(t, table.Insert(record.Record{ID: id, Username: "u", Email: "u@example.com"}))
	}
	require.NoError(t, table.Close())

	reopened, err := OpenTable(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	var got []uint32
	require.NoError(t, reopened.Scan(func(r record.Record) error {
		got = append(got, r.ID)
		return nil
	}))
	assert.Equal(t, []uint32{1, 2, 3}, got)
}

// TestLeafSplitPromotesInternalRoot exercises the exact boundary spec.md §4.4
// calls out: inserting LeafMaxCells+1 sequential keys into a single-leaf
// table forces a split into two leaves of LeafLeftSplitCount/
// LeafRightSplitCount cells apiece, joined by next_leaf, under a freshly
// promoted two-child internal root.
func TestLeafSplitPromotesInternalRoot(t *testing.T) {
	require.Equal(t, 13, LeafMaxCells)
	require.Equal(t, 7, LeafRightSplitCount)
	require.Equal(t, 7, LeafLeftSplitCount)

	table := newTestTable(t)
	for id := uint32(1); id <= uint32(LeafMaxCells+1); id++ {
		require.NoError(t, table.Insert(record.Record{ID: id, Username: "u", Email: "u@example.com"}))
	}

	var buf bytes.Buffer
	require.NoError(t, table.DumpTree(&buf))

	expected := `- internal (size 1)
  - leaf (size 7)
    - key 1
    - key 2
    - key 3
    - key 4
    - key 5
    - key 6
    - key 7
  - key 7
  - leaf (size 7)
    - key 8
    - key 9
    - key 10
    - key 11
    - key 12
    - key 13
    - key 14
`
	assert.Equal(t, expected, buf.String())

	var got []uint32
	require.NoError(t, table.Scan(func(r record.Record) error {
		got = append(got, r.ID)
		return nil
	}))
	want := make([]uint32, LeafMaxCells+1)
	for i := range want {
		want[i] = uint32(i + 1)
	}
	assert.Equal(t, want, got)
}

func TestInternalInsertBeyondMaxCellsIsFatal(t *testing.T) {
	table := newTestTable(t)
	// Force enough leaf splits to exhaust InternalMaxCells separators on
	// the root, then trip the unimplemented-internal-split guard.
	total := (LeafMaxCells + 1) * (InternalMaxCells + 2)
	var lastErr error
	for id := uint32(1); id <= uint32(total); id++ {
		lastErr = table.Insert(record.Record{ID: id, Username: "u", Email: "u@example.com"})
		if lastErr != nil {
			break
		}
	}
	require.Error(t, lastErr)
	assert.ErrorIs(t, lastErr, ErrSplitInternalUnimplemented)
}
