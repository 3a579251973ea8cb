// Package listio reads newline-separated lists of email-like strings.
package listio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgellow/mailfold/internal/log"
	"golang.org/x/sync/errgroup"
)

// StdinPath is the path argument that selects standard input
const StdinPath = "-"

const maxLineSize = 1 << 20

// Read returns one entry per non-blank line, trimmed of surrounding whitespace
func Read(r io.Reader) ([]string, error) {
	var entries []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning input: %w", err)
	}
	return entries, nil
}

// Reader reads lists from files and stdin
type Reader struct {
	Stdin          io.Reader
	MaxConcurrency int
}

// ReadFiles reads every path concurrently and concatenates the entries in
// argument order. No paths, or the path "-", reads Stdin.
func (r *Reader) ReadFiles(ctx context.Context, paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{StdinPath}
	}

	stdinUses := 0
	for _, p := range paths {
		if p == StdinPath {
			stdinUses++
		}
	}
	if stdinUses > 1 {
		return nil, fmt.Errorf("stdin (%q) can only be read once", StdinPath)
	}

	results := make([][]string, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if r.MaxConcurrency > 0 {
		g.SetLimit(r.MaxConcurrency)
	}

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entries, err := r.readOne(path)
			if err != nil {
				return err
			}
			results[i] = entries
			log.LogTraceWithFields("listio", "Read input", map[string]any{
				"path":    path,
				"entries": len(entries),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, entries := range results {
		total += len(entries)
	}
	all := make([]string, 0, total)
	for _, entries := range results {
		all = append(all, entries...)
	}
	return all, nil
}

func (r *Reader) readOne(path string) ([]string, error) {
	if path == StdinPath {
		if r.Stdin == nil {
			return nil, fmt.Errorf("reading stdin: no stdin available")
		}
		entries, err := Read(r.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return entries, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	entries, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return entries, nil
}
