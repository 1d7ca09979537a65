package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"nanodb/internal/record"
	"nanodb/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is one REPL run over a single table.
type Session struct {
	table  *storage.Table
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	log    *zap.Logger
	sid    string
}

// New builds a Session reading from in and writing prompts/output/errors
// to out/errOut respectively.
func New(table *storage.Table, in io.Reader, out, errOut io.Writer, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		table:  table,
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
		log:    log,
		sid:    uuid.NewString(),
	}
}

// ErrReported wraps a fatal error Run has already written to errOut as an
// `[ERROR]`-prefixed line. Callers of Run must check errors.Is(err,
// ErrReported) before printing err themselves, to avoid reporting the same
// fatal condition twice.
var ErrReported = errors.New("reported")

// Run executes the read-eval-print loop until EOF or `.exit`. It returns
// nil on a clean exit (including EOF). A non-nil return is always a fatal
// condition (per spec.md §7) already reported to errOut and wrapped in
// ErrReported.
func (s *Session) Run() error {
	for {
		fmt.Fprint(s.out, "db > ")
		line, err := s.readLine()
		if err != nil && !errors.Is(err, io.EOF) {
			return s.fatal(err)
		}
		atEOF := errors.Is(err, io.EOF)
		line = strings.TrimSpace(line)
		if line == "" {
			if atEOF {
				return nil
			}
			continue
		}

		if strings.HasPrefix(line, ".") {
			done, err := s.handleMeta(line)
			if err != nil {
				s.report(err)
				if isFatal(err) {
					return s.wrapReported(err)
				}
				continue
			}
			if done {
				return nil
			}
			continue
		}

		if err := s.handleStatement(line); err != nil {
			s.report(err)
			if isFatal(err) {
				return s.wrapReported(err)
			}
		}
	}
}

func (s *Session) readLine() (string, error) {
	return s.in.ReadString('\n')
}

func (s *Session) report(err error) {
	fmt.Fprintf(s.errOut, "[ERROR]%s\n", err.Error())
	s.log.Debug("reported error", zap.String("sid", s.sid), zap.Error(err))
}

// fatal reports err and returns it wrapped in ErrReported.
func (s *Session) fatal(err error) error {
	s.report(err)
	return s.wrapReported(err)
}

func (s *Session) wrapReported(err error) error {
	return fmt.Errorf("%w: %w", ErrReported, err)
}

// handleMeta executes a '.' command. done is true iff the session should
// terminate (".exit").
func (s *Session) handleMeta(line string) (done bool, err error) {
	kind, err := ParseMetaCommand(line)
	if err != nil {
		return false, err
	}
	switch kind {
	case MetaExit:
		if err := s.table.Close(); err != nil {
			return false, err
		}
		return true, nil
	case MetaBTree:
		return false, s.table.DumpTree(s.out)
	case MetaConstants:
		storage.PrintConstants(s.out)
		return false, nil
	}
	return false, nil
}

func (s *Session) handleStatement(line string) error {
	stmt, err := ParseStatement(line)
	if err != nil {
		return err
	}
	switch stmt.Kind {
	case StatementInsert:
		return s.table.Insert(stmt.Record)
	case StatementSelect:
		return s.table.Scan(func(r record.Record) error {
			fmt.Fprintln(s.out, Format(r))
			return nil
		})
	default:
		return parseErrorf("unrecognized statement")
	}
}

// isFatal classifies an error per spec.md §7's table: parse errors and
// duplicate-key collisions are reported and the REPL continues; anything
// else (corrupt file, I/O failure, cache exhaustion, the unimplemented
// internal-node split) is fatal.
func isFatal(err error) bool {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return false
	}
	var dupErr *storage.DuplicateKeyError
	if errors.As(err, &dupErr) {
		return false
	}
	return true
}
