package git

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLog(t *testing.T) {
	out := "0123456789abcdef\x1ffeat(gateway): add websocket relay\x1f\x1e\n" +
		"fedcba9876543210\x1ffix!: drop legacy config\x1fBREAKING CHANGE: config v1 removed\x1e\n" +
		"aaaaaaaaaaaaaaaa\x1fMerge tag 'v2026.2.1'\x1f\x1e\n" +
		"bbbbbbbbbbbbbbbb\x1fchore: bump deps\x1fsee #12\nand #13\x1e"

	commits := ParseLog(out)
	require.Len(t, commits, 4)

	assert.Equal(t, Commit{Hash: "0123456", Type: "feat", Scope: "gateway", Summary: "add websocket relay"}, commits[0])

	assert.Equal(t, "fix", commits[1].Type)
	assert.True(t, commits[1].Breaking)
	assert.Equal(t, "drop legacy config", commits[1].Summary)

	assert.Empty(t, commits[2].Type)
	assert.Equal(t, "Merge tag 'v2026.2.1'", commits[2].Summary)

	assert.Equal(t, "see #12\nand #13", commits[3].Body)
	assert.False(t, commits[3].Breaking)
}

func TestParseLogEmpty(t *testing.T) {
	assert.Empty(t, ParseLog(""))
	assert.Empty(t, ParseLog("\n\x1e\n"))
}

func TestCommandError(t *testing.T) {
	err := &CommandError{
		Args:   []string{"push", "origin", "main"},
		Status: 128,
		Stderr: "To github.com:x/y.git\nfatal: could not read from remote",
	}
	assert.Equal(t, "git push origin main: exit status 128: fatal: could not read from remote", err.Error())
	assert.Equal(t, 128, err.ExitCode())
}

func TestMergeConflictError(t *testing.T) {
	err := &MergeConflictError{Ref: "v2026.2.14", Branch: "sync/v2026.2.14", Files: []string{"a.go", "b.go"}}
	assert.True(t, errors.Is(err, ErrMergeConflict))
	assert.Equal(t, 1, err.ExitCode())
	assert.Contains(t, err.Error(), "2 conflicted file(s): a.go, b.go")

	err.Status = 2
	assert.Equal(t, 2, err.ExitCode())
}
