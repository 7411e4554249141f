package cc0

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

func TestNewSourceReader_ShiftJISComment(t *testing.T) {
	src, err := japanese.ShiftJIS.NewEncoder().String("// メイン関数\nvoid main() { print(1); }")
	require.NoError(t, err)

	// Non-ASCII text inside a comment is fine once decoded.
	r, err := NewSourceReader(strings.NewReader(src), "shift_jis")
	require.NoError(t, err)
	program, err := Compile(r)
	require.NoError(t, err)
	assert.Len(t, program.Functions, 1)
}

func TestNewSourceReader_BOMOverridesName(t *testing.T) {
	src, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String("void main() {}")
	require.NoError(t, err)

	r, err := NewSourceReader(strings.NewReader(src), "latin1")
	require.NoError(t, err)
	decoded, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "void main() {}", string(decoded))
}

func TestNewSourceReader_DefaultIsUTF8(t *testing.T) {
	r, err := NewSourceReader(bytes.NewReader([]byte("\xef\xbb\xbfint x;")), "")
	require.NoError(t, err)
	decoded, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "int x;", string(decoded))
}

func TestNewSourceReader_UnknownEncoding(t *testing.T) {
	_, err := NewSourceReader(strings.NewReader(""), "klingon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `source encoding "klingon"`)
}
