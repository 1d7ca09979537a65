// Package repl drives the line-oriented shell spec.md §6 describes: a
// meta-command dispatcher for lines starting with '.', and a statement
// parser for everything else. Neither belongs to the storage core —
// spec.md §1 calls them out as external collaborators — but both are
// part of the shipped CLI surface.
package repl

import (
	"strconv"
	"strings"

	"nanodb/internal/record"

	"github.com/pkg/errors"
)

// StatementKind discriminates a parsed statement.
type StatementKind int

const (
	StatementInsert StatementKind = iota
	StatementSelect
)

// Statement is a parsed, ready-to-execute line.
type Statement struct {
	Kind   StatementKind
	Record record.Record
}

// ParseError is a non-fatal statement parse failure: bad syntax, an
// unparseable id, or an oversize field. The REPL reports it and continues.
type ParseError struct {
	msg string
}

func (e *ParseError) Error() string { return e.msg }

func parseErrorf(format string, args ...interface{}) error {
	return &ParseError{msg: errors.Errorf(format, args...).Error()}
}

// ParseStatement parses one non-meta REPL line into a Statement.
func ParseStatement(line string) (Statement, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Statement{}, parseErrorf("syntax error")
	}

	switch fields[0] {
	case "insert":
		return parseInsert(fields[1:])
	case "select":
		return Statement{Kind: StatementSelect}, nil
	default:
		return Statement{}, parseErrorf("unknown command: '%s'", fields[0])
	}
}

func parseInsert(args []string) (Statement, error) {
	if len(args) < 3 {
		return Statement{}, parseErrorf("syntax error")
	}

	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return Statement{}, parseErrorf("can't parse '%s' to u32", args[0])
	}

	username, email := args[1], args[2]
	if len(username) > record.MaxUsernameLen {
		return Statement{}, parseErrorf("'%s' is too long for username", username)
	}
	if len(email) > record.MaxEmailLen {
		return Statement{}, parseErrorf("'%s' is too long for email", email)
	}

	return Statement{
		Kind: StatementInsert,
		Record: record.Record{
			ID:       uint32(id),
			Username: username,
			Email:    email,
		},
	}, nil
}

// MetaCommandKind discriminates a parsed meta-command.
type MetaCommandKind int

const (
	MetaExit MetaCommandKind = iota
	MetaBTree
	MetaConstants
)

// ParseMetaCommand parses a line beginning with '.'.
func ParseMetaCommand(line string) (MetaCommandKind, error) {
	switch line {
	case ".exit":
		return MetaExit, nil
	case ".btree":
		return MetaBTree, nil
	case ".constants":
		return MetaConstants, nil
	default:
		return 0, parseErrorf("unknown metacommand: '%s'", line)
	}
}
