package tinytable

import (
	"bytes"
	"fmt"
)

const (
	// MaxUsernameLength and MaxEmailLength are the maximum byte lengths of
	// the two text columns. Each column occupies one extra byte on disk so
	// that even a maximum length value keeps a trailing null.
	MaxUsernameLength = 32
	MaxEmailLength    = 255

	idSize            = 4
	usernameFieldSize = MaxUsernameLength + 1
	emailFieldSize    = MaxEmailLength + 1

	usernameOffset = idSize
	emailOffset    = usernameOffset + usernameFieldSize

	// RowSize is the fixed width of a serialized row.
	RowSize = idSize + usernameFieldSize + emailFieldSize
)

// Row is a single record. The ID doubles as the B-tree key.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

// NewRow validates field lengths up front so the storage layer can assume
// rows it receives always fit their fixed width fields.
func NewRow(id uint32, username, email string) (Row, error) {
	aRow := Row{
		ID:       id,
		Username: username,
		Email:    email,
	}
	if err := aRow.Validate(); err != nil {
		return Row{}, err
	}
	return aRow, nil
}

func (r Row) Validate() error {
	if len(r.Username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	if len(r.Email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	return nil
}

// Marshal serializes the row into its fixed width layout, ID first as
// a little endian integer, then username and email left justified and null
// padded to full field width. Over-length values are rejected, truncating
// is never allowed.
func (r Row) Marshal() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	buf := make([]byte, RowSize)
	marshalUint32(buf, r.ID, 0)
	copy(buf[usernameOffset:usernameOffset+usernameFieldSize], r.Username)
	copy(buf[emailOffset:emailOffset+emailFieldSize], r.Email)

	return buf, nil
}

// UnmarshalRow is the inverse of Marshal, a round trip is exact for any
// row satisfying the length invariants.
func UnmarshalRow(buf []byte, aRow *Row) error {
	if len(buf) < RowSize {
		return fmt.Errorf("row buffer too short: %d", len(buf))
	}

	aRow.ID = unmarshalUint32(buf, 0)
	aRow.Username = unmarshalPaddedString(buf, usernameOffset, usernameFieldSize)
	aRow.Email = unmarshalPaddedString(buf, emailOffset, emailFieldSize)

	return nil
}

func unmarshalPaddedString(buf []byte, offset, size int) string {
	field := buf[offset : offset+size]
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}
