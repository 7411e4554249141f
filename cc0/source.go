package cc0

import (
	"io"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncoding is the source encoding assumed when none is given.
const DefaultEncoding = "utf-8"

// NewSourceReader returns a reader that decodes source text in the named
// encoding to UTF-8. Names are WHATWG labels such as "gbk" or "shift_jis".
// A byte order mark at the start of the input takes precedence over the name.
func NewSourceReader(r io.Reader, name string) (io.Reader, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errors.Wrapf(err, "source encoding %q", name)
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}
