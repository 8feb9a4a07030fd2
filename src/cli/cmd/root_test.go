package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidaislive/forksync/src/git"
	"github.com/vidaislive/forksync/src/syncer"
	"github.com/vidaislive/forksync/src/verify"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"precondition", &syncer.PreconditionError{Check: "branch", Reason: "exists"}, 1},
		{"merge conflict", &git.MergeConflictError{Ref: "v1", Status: 128}, 128},
		{"wrapped command", fmt.Errorf("pushing: %w", &git.CommandError{Args: []string{"push"}, Status: 2}), 2},
		{"missing tag", &verify.MissingTagError{Tag: "vida-v1", Remote: "origin"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestImageTagCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"image-tag", "vida-v2026.12.4-rc1"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "2026-12-04-rc1\n", out.String())

	out.Reset()
	rootCmd.SetArgs([]string{"image-tag", "vida-v2026.2.14", "feature/foo"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "vida-v2026.2.14\t2026-02-14\nfeature/foo\tfeature-foo\n", out.String())
}

func TestStringOr(t *testing.T) {
	assert.Equal(t, "flag", stringOr("flag", "cfg"))
	assert.Equal(t, "cfg", stringOr("", "cfg"))
}
