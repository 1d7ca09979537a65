// Package record implements the fixed-layout row schema this engine knows
// about: (id uint32, username text<=31, email text<=255).
package record

import (
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	// UsernameSize is the fixed on-disk width of the username field, in bytes.
	UsernameSize = 32
	// EmailSize is the fixed on-disk width of the email field, in bytes.
	EmailSize = 256

	// MaxUsernameLen is the longest username Validate accepts: one byte
	// less than UsernameSize, so a stored username is always followed by at
	// least one NUL padding byte.
	MaxUsernameLen = UsernameSize - 1
	// MaxEmailLen is the longest email Validate accepts: one byte less than
	// EmailSize, leaving at least one NUL padding byte.
	MaxEmailLen = EmailSize - 1

	idSize = 4

	// Size is the serialized width of a Record: ROW_SIZE in spec terms.
	Size = idSize + UsernameSize + EmailSize
)

// Record is one row of the engine's single hard-coded table.
type Record struct {
	ID       uint32
	Username string
	Email    string
}

// Validate reports whether r's fields fit within their fixed-width columns.
func (r Record) Validate() error {
	if len(r.Username) > MaxUsernameLen {
		return errors.Errorf("'%s' is too long for username", r.Username)
	}
	if len(r.Email) > MaxEmailLen {
		return errors.Errorf("'%s' is too long for email", r.Email)
	}
	return nil
}

// Serialize writes r into dst, which must be exactly Size bytes.
// The caller is responsible for having validated r with Validate first.
func Serialize(r Record, dst []byte) error {
	if len(dst) != Size {
		return errors.Errorf("record.Serialize: dst length %d, want %d", len(dst), Size)
	}
	for i := range dst {
		dst[i] = 0
	}
	binary.LittleEndian.PutUint32(dst[0:idSize], r.ID)
	copy(dst[idSize:idSize+UsernameSize], r.Username)
	copy(dst[idSize+UsernameSize:idSize+UsernameSize+EmailSize], r.Email)
	return nil
}

// Deserialize reads a Record out of src, which must be exactly Size bytes.
// Trailing NUL padding is trimmed from both strings.
func Deserialize(src []byte) (Record, error) {
	if len(src) != Size {
		return Record{}, errors.Errorf("record.Deserialize: src length %d, want %d", len(src), Size)
	}
	var r Record
	r.ID = binary.LittleEndian.Uint32(src[0:idSize])

	usernameRaw := src[idSize : idSize+UsernameSize]
	if !utf8.Valid(trimNUL(usernameRaw)) {
		return Record{}, errors.New("record.Deserialize: username is not valid utf8")
	}
	r.Username = string(trimNUL(usernameRaw))

	emailRaw := src[idSize+UsernameSize : idSize+UsernameSize+EmailSize]
	if !utf8.Valid(trimNUL(emailRaw)) {
		return Record{}, errors.New("record.Deserialize: email is not valid utf8")
	}
	r.Email = string(trimNUL(emailRaw))

	return r, nil
}

func trimNUL(b []byte) []byte {
	return []byte(strings.TrimRight(string(b), "\x00"))
}
