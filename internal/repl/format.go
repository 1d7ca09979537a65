package repl

import (
	"fmt"

	"nanodb/internal/record"
)

// Format renders a record the way `select` prints it: "id: username email".
// Ground truth: original_source/src/backend/table.rs's select() trims
// NUL padding from both strings and joins with spaces — record.Deserialize
// already trims the padding, so this is just the join.
func Format(r record.Record) string {
	return fmt.Sprintf("%d: %s %s", r.ID, r.Username, r.Email)
}
