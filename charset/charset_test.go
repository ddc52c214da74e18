package charset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrelib/go-mail/charset"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	b, err := charset.Encode("utf-8", "héllo")
	require.NoError(t, err)
	assert.Equal(t, []byte("héllo"), b)

	b, err = charset.Encode("iso-8859-1", "héllo")
	require.NoError(t, err)
	assert.Equal(t, []byte{'h', 0xe9, 'l', 'l', 'o'}, b)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	s, err := charset.Decode("iso-8859-1", []byte{'h', 0xe9, 'l', 'l', 'o'})
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)
}

func TestTranscode(t *testing.T) {
	t.Parallel()

	// matching charsets pass through untouched
	s, err := charset.Transcode("héllo", "utf-8", "UTF-8")
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)

	s, err = charset.Transcode("héllo", "", "iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)

	s, err = charset.Transcode("héllo", "utf-8", "iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, string([]byte{'h', 0xe9, 'l', 'l', 'o'}), s)

	s, err = charset.Transcode(string([]byte{'h', 0xe9}), "iso-8859-1", "utf-8")
	require.NoError(t, err)
	assert.Equal(t, "hé", s)
}
