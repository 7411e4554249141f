package cc0

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nof-sh/C0-compiler/casebook"
)

func TestCasebooks(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.md"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		cases, err := casebook.Load(path)
		require.NoError(t, err)

		for _, c := range cases {
			t.Run(filepath.Base(path)+"/"+c.Name, func(t *testing.T) {
				program, err := Compile(strings.NewReader(c.Source))
				if c.Error != "" {
					require.Error(t, err, "%s:%d", path, c.Line)
					assert.Equal(t, c.Error, err.Error(), "%s:%d", path, c.Line)
					return
				}
				require.NoError(t, err, "%s:%d", path, c.Line)

				var out strings.Builder
				require.NoError(t, WriteListing(&out, program))
				assert.Equal(t, c.Listing, out.String(), "%s:%d", path, c.Line)
			})
		}
	}
}
