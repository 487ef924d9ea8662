// Package inputs finds diagram sources on disk for batch rendering.
package inputs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMaxFileSize is the largest source file considered (1 MB).
const DefaultMaxFileSize int64 = 1 << 20

// Source is a diagram source file found on disk.
type Source struct {
	Path        string // Absolute path on disk.
	RelPath     string // Path relative to the search root, slash separated.
	Kind        string // render.KindMermaid, render.KindPlantUML or KindMarkdown.
	Size        int64
	ContentHash string // SHA-256 hex digest of the content.
}

// Config controls Walk and Expand.
type Config struct {
	RootDir     string
	Include     []string // Doublestar patterns; empty includes everything.
	Exclude     []string
	MaxFileSize int64 // 0 uses DefaultMaxFileSize.
}

// Walk traverses cfg.RootDir and returns every diagram source that passes
// filtering, sorted by relative path.
func Walk(cfg Config) ([]Source, error) {
	root, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("inputs: resolve root: %w", err)
	}

	var out []Source
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip entries we cannot read instead of aborting.
			return nil
		}
		if d.IsDir() {
			if path != root && shouldExcludeDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if !MatchesInclude(relPath, cfg.Include) || MatchesExclude(relPath, cfg.Exclude) {
			return nil
		}

		if src, ok := inspect(path, relPath, cfg.maxSize()); ok {
			out = append(out, src)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("inputs: traversal: %w", err)
	}

	sortSources(out)
	return out, nil
}

// Expand resolves command-line arguments into sources. Each argument may be
// a file, a directory (walked with cfg's filters) or a doublestar pattern
// relative to the working directory. Duplicates are dropped.
func Expand(args []string, cfg Config) ([]Source, error) {
	seen := map[string]bool{}
	var out []Source
	add := func(list ...Source) {
		for _, s := range list {
			if !seen[s.Path] {
				seen[s.Path] = true
				out = append(out, s)
			}
		}
	}

	for _, arg := range args {
		if hasMeta(arg) {
			matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("inputs: bad pattern %q: %w", arg, err)
			}
			base, _ := doublestar.SplitPattern(filepath.ToSlash(arg))
			for _, m := range matches {
				rel, err := filepath.Rel(filepath.FromSlash(base), m)
				if err != nil {
					rel = filepath.Base(m)
				}
				if MatchesExclude(rel, cfg.Exclude) {
					continue
				}
				abs, err := filepath.Abs(m)
				if err != nil {
					continue
				}
				if src, ok := inspect(abs, rel, cfg.maxSize()); ok {
					add(src)
				}
			}
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("inputs: %w", err)
		}
		if info.IsDir() {
			sub := cfg
			sub.RootDir = arg
			list, err := Walk(sub)
			if err != nil {
				return nil, err
			}
			add(list...)
			continue
		}

		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("inputs: resolve %s: %w", arg, err)
		}
		src, ok := inspect(abs, filepath.Base(arg), cfg.maxSize())
		if !ok {
			return nil, fmt.Errorf("inputs: %s is not a diagram source", arg)
		}
		add(src)
	}

	sortSources(out)
	return out, nil
}

func (c Config) maxSize() int64 {
	if c.MaxFileSize <= 0 {
		return DefaultMaxFileSize
	}
	return c.MaxFileSize
}

// inspect builds a Source for path if it is a readable, text diagram source
// within the size limit.
func inspect(path, relPath string, maxSize int64) (Source, bool) {
	kind := DetectKind(path)
	if kind == "" {
		return Source{}, false
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxSize {
		return Source{}, false
	}
	if isBinary(path) {
		return Source{}, false
	}
	hash, err := hashFile(path)
	if err != nil {
		return Source{}, false
	}
	return Source{
		Path:        path,
		RelPath:     filepath.ToSlash(relPath),
		Kind:        kind,
		Size:        info.Size(),
		ContentHash: hash,
	}, true
}

func sortSources(list []Source) {
	sort.Slice(list, func(i, j int) bool { return list[i].RelPath < list[j].RelPath })
}

// isBinary reads the first 512 bytes of a file and checks for NUL bytes.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true // treat unreadable files as binary
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}
	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true
		}
	}
	return false
}

// hashFile computes the SHA-256 digest of the given file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
