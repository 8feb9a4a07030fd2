package handoff

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const conflicted = `{
<<<<<<< HEAD
  "version": "2026.2.1-vida",
=======
  "version": "2026.2.14",
>>>>>>> v2026.2.14
  "name": "openclaw",
<<<<<<< HEAD
  "private": true
=======
  "private": false
>>>>>>> v2026.2.14
}
`

func TestCountHunks(t *testing.T) {
	wt := memfs.New()
	require.NoError(t, util.WriteFile(wt, "package.json", []byte(conflicted), 0o644))
	require.NoError(t, util.WriteFile(wt, "src/gateway/server.ts", []byte("<<<<<<< HEAD\na\n=======\nb\n>>>>>>> v2026.2.14\n"), 0o644))
	require.NoError(t, util.WriteFile(wt, "README.md", []byte("resolved\n"), 0o644))

	hunks, err := CountHunks(wt, []string{"package.json", "src/gateway/server.ts", "README.md", "deleted.go"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"package.json": 2, "src/gateway/server.ts": 1, "README.md": 0}, hunks)
}

func TestRenderHunks(t *testing.T) {
	in := sampleInput()
	in.Hunks = map[string]int{"package.json": 2, "src/gateway/server.ts": 1}

	note, err := Render(in)
	require.NoError(t, err)
	assert.Contains(t, note, "- src/gateway/server.ts (1 conflict hunk)\n")
	assert.Contains(t, note, "- package.json (2 conflict hunks)\n")
}
