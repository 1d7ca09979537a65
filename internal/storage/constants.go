package storage

import "nanodb/internal/record"

// PageIndex is the machine-native-width integer used for every on-disk
// pointer and key in a page: page numbers, cell keys, counters. The source
// this engine is modeled on persists this type at native width; on a
// 64-bit host that is 8 bytes. This is a documented portability wart (see
// DESIGN.md) rather than an oversight — it preserves the original's
// byte-for-byte layout math.
type PageIndex uint64

const (
	// PageSize is the fixed width of every page on disk and in cache.
	PageSize = 4096
	// MaxPages bounds the pager's resident page cache. The cache never
	// evicts; exceeding this bound is fatal.
	MaxPages = 100

	pageIndexSize = 8 // sizeof(PageIndex)

	nodeTypeOffset = 0
	isRootOffset   = 1
	parentOffset   = 2

	// CommonHeaderSize is the byte width of the header shared by leaf and
	// internal pages: type(1) + is_root(1) + parent(PageIndex).
	CommonHeaderSize = 2 + pageIndexSize

	leafNumCellsOffset = CommonHeaderSize
	leafNextLeafOffset = leafNumCellsOffset + pageIndexSize
	leafCellsStart     = leafNextLeafOffset + pageIndexSize

	// LeafHeaderSize is the byte width of a leaf page's header.
	LeafHeaderSize = leafCellsStart

	// LeafCellSize is the width of one leaf cell: key(PageIndex) + value(record.Size).
	LeafCellSize = pageIndexSize + record.Size

	internalNumKeysOffset    = CommonHeaderSize
	internalRightChildOffset = internalNumKeysOffset + pageIndexSize
	internalCellsStart       = internalRightChildOffset + pageIndexSize

	// InternalHeaderSize is the byte width of an internal page's header.
	InternalHeaderSize = internalCellsStart

	// InternalCellSize is the width of one internal cell: child(PageIndex) + key(PageIndex).
	InternalCellSize = pageIndexSize * 2

	// InternalMaxCells is fixed small so the test suite can exercise splits
	// without needing thousands of inserts; the engine never actually
	// splits an internal node (see ErrSplitInternalUnimplemented).
	InternalMaxCells = 3
)

// LeafMaxCells is the number of (key, value) cells that fit in a leaf page.
var LeafMaxCells = (PageSize - LeafHeaderSize) / LeafCellSize

// LeafRightSplitCount is how many cells move to the new right sibling on a
// leaf split.
var LeafRightSplitCount = (LeafMaxCells + 1 + 1) / 2

// LeafLeftSplitCount is how many cells remain in the original leaf on a
// leaf split.
var LeafLeftSplitCount = (LeafMaxCells + 1) - LeafRightSplitCount
