package handoff

import (
	"bufio"
	"errors"
	"io/fs"
	"strings"

	"github.com/go-git/go-billy/v5"
)

const hunkStart = "<<<<<<<"

// CountHunks counts conflict hunks in each of paths, read from the worktree
// filesystem. Paths that no longer exist (a side deleted the file) are left
// out of the result.
func CountHunks(wt billy.Filesystem, paths []string) (map[string]int, error) {
	hunks := make(map[string]int, len(paths))
	for _, p := range paths {
		n, err := countFile(wt, p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return hunks, err
		}
		hunks[p] = n
	}
	return hunks, nil
}

func countFile(wt billy.Filesystem, path string) (int, error) {
	f, err := wt.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), hunkStart) {
			n++
		}
	}
	return n, scanner.Err()
}
