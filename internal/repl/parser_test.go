package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nanodb/internal/record"
)

func TestParseStatementInsert(t *testing.T) {
	stmt, err := ParseStatement("insert 1 ann ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, StatementInsert, stmt.Kind)
	assert.Equal(t, record.Record{ID: 1, Username: "ann", Email: "ann@example.com"}, stmt.Record)
}

func TestParseStatementSelect(t *testing.T) {
	stmt, err := ParseStatement("select")
	require.NoError(t, err)
	assert.Equal(t, StatementSelect, stmt.Kind)
}

func TestParseStatementUnknownCommand(t *testing.T) {
	_, err := ParseStatement("delete 1")
	require.Error(t, err)
	assert.Equal(t, "unknown command: 'delete'", err.Error())
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParseInsertSyntaxError(t *testing.T) {
	_, err := ParseStatement("insert 1 ann")
	require.Error(t, err)
	assert.Equal(t, "syntax error", err.Error())
}

func TestParseInsertBadID(t *testing.T) {
	_, err := ParseStatement("insert -1 ann ann@example.com")
	require.Error(t, err)
	assert.Equal(t, "can't parse '-1' to u32", err.Error())
}

func TestParseInsertOversizeUsername(t *testing.T) {
	long := make([]byte, record.MaxUsernameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := ParseStatement("insert 1 " + string(long) + " a@example.com")
	require.Error(t, err)
	assert.Equal(t, "'"+string(long)+"' is too long for username", err.Error())
}

func TestParseInsertOversizeEmail(t *testing.T) {
	long := make([]byte, record.MaxEmailLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := ParseStatement("insert 1 ann " + string(long))
	require.Error(t, err)
	assert.Equal(t, "'"+string(long)+"' is too long for email", err.Error())
}

func TestParseMetaCommand(t *testing.T) {
	kind, err := ParseMetaCommand(".exit")
	require.NoError(t, err)
	assert.Equal(t, MetaExit, kind)

	kind, err = ParseMetaCommand(".btree")
	require.NoError(t, err)
	assert.Equal(t, MetaBTree, kind)

	kind, err = ParseMetaCommand(".constants")
	require.NoError(t, err)
	assert.Equal(t, MetaConstants, kind)
}

func TestParseMetaCommandUnknown(t *testing.T) {
	_, err := ParseMetaCommand(".bogus")
	require.Error(t, err)
	assert.Equal(t, "unknown metacommand: '.bogus'", err.Error())
}
