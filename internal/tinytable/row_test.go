package tinytable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_MarshalUnmarshal(t *testing.T) {
	t.Parallel()

	aRow := gen.Row()

	data, err := aRow.Marshal()
	require.NoError(t, err)
	require.Len(t, data, RowSize)

	var actual Row
	err = UnmarshalRow(data, &actual)
	require.NoError(t, err)

	assert.Equal(t, aRow, actual)
}

func TestRow_MarshalUnmarshal_MaxLengthFields(t *testing.T) {
	t.Parallel()

	aRow := Row{
		ID:       42,
		Username: strings.Repeat("u", MaxUsernameLength),
		Email:    strings.Repeat("e", MaxEmailLength),
	}

	data, err := aRow.Marshal()
	require.NoError(t, err)

	var actual Row
	err = UnmarshalRow(data, &actual)
	require.NoError(t, err)

	assert.Equal(t, aRow, actual)
}

func TestNewRow_UsernameTooLong(t *testing.T) {
	t.Parallel()

	_, err := NewRow(1, strings.Repeat("u", MaxUsernameLength+1), "foo@bar.com")
	require.ErrorIs(t, err, ErrUsernameTooLong)
}

func TestNewRow_EmailTooLong(t *testing.T) {
	t.Parallel()

	_, err := NewRow(1, "foo", strings.Repeat("e", MaxEmailLength+1))
	require.ErrorIs(t, err, ErrEmailTooLong)
}

func TestRow_Marshal_Invalid(t *testing.T) {
	t.Parallel()

	aRow := Row{
		ID:       1,
		Username: strings.Repeat("u", MaxUsernameLength+1),
	}
	_, err := aRow.Marshal()
	require.ErrorIs(t, err, ErrUsernameTooLong)
}

func TestUnmarshalRow_ShortBuffer(t *testing.T) {
	t.Parallel()

	var aRow Row
	err := UnmarshalRow(make([]byte, RowSize-1), &aRow)
	require.Error(t, err)
}

func TestRow_Marshal_Layout(t *testing.T) {
	t.Parallel()

	aRow := Row{
		ID:       258,
		Username: "alice",
		Email:    "alice@example.com",
	}

	data, err := aRow.Marshal()
	require.NoError(t, err)

	// ID is little endian at offset 0, 258 = 0x0102
	assert.Equal(t, []byte{2, 1, 0, 0}, data[:4])
	// Username starts right after the ID, null padded to full width
	assert.Equal(t, byte('a'), data[usernameOffset])
	assert.Equal(t, byte(0), data[usernameOffset+len(aRow.Username)])
	// Email occupies the rest of the row
	assert.Equal(t, byte('a'), data[emailOffset])
	assert.Equal(t, byte(0), data[emailOffset+len(aRow.Email)])
}
