package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rvielma/cultivar/pkg/contentkey"
)

// FileCorpusStore implements ports.CorpusStore over the content directory
// tree, one text file per content key, one phrasing per line.
type FileCorpusStore struct {
	BasePath string
}

// NewFileCorpusStore creates a corpus store rooted at basePath. The content
// root directory name is part of each key's encoded path, so basePath is
// the directory containing "content/", typically the project root.
func NewFileCorpusStore(basePath string) *FileCorpusStore {
	if basePath == "" {
		basePath = "."
	}
	return &FileCorpusStore{BasePath: basePath}
}

// Lines returns the non-blank phrasings stored for a key. A missing file
// is an empty corpus, not an error.
func (s *FileCorpusStore) Lines(key string) ([]string, error) {
	k, err := contentkey.Decode(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.BasePath, filepath.FromSlash(k.Path())))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read corpus %s: %w", key, err)
	}
	return splitLines(string(data)), nil
}

// Siblings returns up to max phrasings drawn from other keys in the same
// actor/action directory, for style grounding when the key itself is empty
// or thin. Files are visited in name order.
func (s *FileCorpusStore) Siblings(key string, max int) ([]string, error) {
	k, err := contentkey.Decode(key)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(s.BasePath, filepath.FromSlash(k.SiblingsDir()))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list corpus siblings %s: %w", key, err)
	}

	names := make([]string, 0, len(entries))
	self := filepath.Base(filepath.FromSlash(k.Path()))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") || e.Name() == self {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		if max > 0 && len(out) >= max {
			break
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		for _, line := range splitLines(string(data)) {
			out = append(out, line)
			if max > 0 && len(out) >= max {
				break
			}
		}
	}
	return out, nil
}

// Append adds accepted phrasings to the key's corpus file, creating it and
// its directory as needed.
func (s *FileCorpusStore) Append(key string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	k, err := contentkey.Decode(key)
	if err != nil {
		return err
	}

	path := filepath.Join(s.BasePath, filepath.FromSlash(k.Path()))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("ensure corpus dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open corpus %s: %w", key, err)
	}
	defer f.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return fmt.Errorf("append corpus %s: %w", key, err)
		}
	}
	return nil
}

func splitLines(data string) []string {
	var out []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
