package storage

import (
	"fmt"
	"io"
	"strings"

	"nanodb/internal/record"
)

// PrintConstants writes the layout constants the .constants meta-command
// reports, per spec.md §6.
func PrintConstants(w io.Writer) {
	fmt.Fprintln(w, "Constants:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "ROW_SIZE: %d\n", record.Size)
	fmt.Fprintf(w, "COMMON_HEADER_SIZE: %d\n", CommonHeaderSize)
	fmt.Fprintf(w, "LEAF_HEADER_SIZE: %d\n", LeafHeaderSize)
	fmt.Fprintf(w, "LEAF_CELL_SIZE: %d\n", LeafCellSize)
	fmt.Fprintf(w, "LEAF_MAX_CELLS: %d\n", LeafMaxCells)
}

// DumpTree recursively pretty-prints the tree, per spec.md §6, for the
// .btree meta-command.
func (t *Table) DumpTree(w io.Writer) error {
	return t.printTree(w, t.rootPageNum, 0)
}

func (t *Table) printTree(w io.Writer, pageNum PageIndex, depth int) error {
	page, err := t.pager.GetPage(pageNum)
	if err != nil {
		return err
	}
	indent := strings.Repeat("  ", depth)

	if page.IsLeaf() {
		fmt.Fprintf(w, "%s- leaf (size %d)\n", indent, page.NumCells())
		for i := 0; i < int(page.NumCells()); i++ {
			fmt.Fprintf(w, "%s  - key %d\n", indent, page.LeafKey(i))
		}
		return nil
	}

	fmt.Fprintf(w, "%s- internal (size %d)\n", indent, page.NumKeys())
	for i := 0; i < int(page.NumKeys()); i++ {
		if err := t.printTree(w, page.InternalChild(i), depth+1); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s  - key %d\n", indent, page.InternalKey(i))
	}
	return t.printTree(w, page.RightChild(), depth+1)
}
