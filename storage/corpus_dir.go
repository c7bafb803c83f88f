package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MoochMcGee/wiiu-emu/codec"
	"github.com/MoochMcGee/wiiu-emu/hwerrors"
	"github.com/MoochMcGee/wiiu-emu/log"
	"github.com/MoochMcGee/wiiu-emu/types"
	"github.com/pkg/errors"
)

// CorpusDir stores one encoded test file per instruction in a flat directory.
// The file name is the test file's name.
type CorpusDir struct {
	path string
}

func NewCorpusDir(path string) *CorpusDir {
	return &CorpusDir{path: path}
}

func (d *CorpusDir) Path() string { return d.path }

// Ensure creates the directory if it does not exist.
func (d *CorpusDir) Ensure() error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %w", hwerrors.ErrCStorage, d.path, err)
	}
	return nil
}

// WriteTestFile encodes file and replaces <dir>/<file.Name> atomically.
func (d *CorpusDir) WriteTestFile(file *types.TestFile) error {
	if file.Name == "" || strings.ContainsAny(file.Name, `/\`) || strings.HasPrefix(file.Name, ".") {
		return errors.Wrapf(hwerrors.ErrCStorage, "invalid test file name %q", file.Name)
	}
	body, err := codec.Encode(file)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(d.path, "."+file.Name+".*")
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", hwerrors.ErrCStorage, file.Name, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %w", hwerrors.ErrCStorage, file.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", hwerrors.ErrCStorage, file.Name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(d.path, file.Name)); err != nil {
		return fmt.Errorf("%w: rename %s: %w", hwerrors.ErrCStorage, file.Name, err)
	}
	log.Debug(log.Corpus, "wrote test file", "dir", d.path, "name", file.Name, "cases", len(file.Tests))
	return nil
}

// ReadTestFile loads and decodes <dir>/<name>.
func (d *CorpusDir) ReadTestFile(name string) (*types.TestFile, error) {
	body, err := os.ReadFile(filepath.Join(d.path, name))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", hwerrors.ErrCStorage, name, err)
	}
	file, err := codec.Decode(body)
	if err != nil {
		return nil, errors.Wrapf(err, "test file %s", name)
	}
	file.Name = name
	return file, nil
}

// LoadAll decodes every regular file in the directory, sorted by name.
// Hidden files, including partially written temporaries, are skipped.
func (d *CorpusDir) LoadAll() (*types.Corpus, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", hwerrors.ErrCStorage, d.path, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	corpus := &types.Corpus{Files: make([]*types.TestFile, 0, len(names))}
	for _, name := range names {
		file, err := d.ReadTestFile(name)
		if err != nil {
			return nil, err
		}
		corpus.Files = append(corpus.Files, file)
	}
	log.Info(log.Corpus, "corpus loaded", "dir", d.path, "files", len(corpus.Files), "cases", corpus.NumCases())
	return corpus, nil
}
