package storage

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	findingPrefix = "finding/"
	summaryKey    = "run/latest"
)

// Finding is one field that differed between expected and actual state.
type Finding struct {
	File        string `json:"file"`
	Index       int    `json:"index"`
	Field       string `json:"field"`
	Instr       uint32 `json:"instr"`
	Disassembly string `json:"disassembly"`
	Expected    uint64 `json:"expected"`
	Actual      uint64 `json:"actual"`
}

// RunSummary records the totals of the most recent comparison run.
type RunSummary struct {
	Started    time.Time `json:"started"`
	Engine     string    `json:"engine"`
	Files      int       `json:"files"`
	Cases      int       `json:"cases"`
	Skipped    int       `json:"skipped"`
	Mismatches int       `json:"mismatches"`
}

// FindingStore persists comparison findings in LevelDB, keyed by
// finding/<file>/<index>/<field> so that listing returns them in corpus order.
type FindingStore struct {
	ps *PersistenceStore
}

// OpenFindingStore opens the findings database at path; an empty path keeps
// everything in memory.
func OpenFindingStore(path string) (*FindingStore, error) {
	ps, err := NewPersistenceStore(path)
	if err != nil {
		return nil, err
	}
	return &FindingStore{ps: ps}, nil
}

func findingKey(f *Finding) []byte {
	return []byte(fmt.Sprintf("%s%s/%08d/%s", findingPrefix, f.File, f.Index, f.Field))
}

// Reset drops every stored finding, ready for a new run.
func (s *FindingStore) Reset() error {
	_, err := s.ps.DeleteWithPrefix([]byte(findingPrefix))
	return err
}

func (s *FindingStore) Put(f Finding) error {
	value, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return s.ps.Put(findingKey(&f), value)
}

// List returns every stored finding, optionally restricted to one test file.
func (s *FindingStore) List(file string) ([]Finding, error) {
	prefix := findingPrefix
	if file != "" {
		prefix += file + "/"
	}
	kvs, err := s.ps.GetWithPrefix([]byte(prefix))
	if err != nil {
		return nil, err
	}
	findings := make([]Finding, 0, len(kvs))
	for _, kv := range kvs {
		var f Finding
		if err := json.Unmarshal(kv[1], &f); err != nil {
			return nil, fmt.Errorf("finding %s: %w", kv[0], err)
		}
		findings = append(findings, f)
	}
	return findings, nil
}

func (s *FindingStore) PutSummary(sum RunSummary) error {
	value, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	return s.ps.Put([]byte(summaryKey), value)
}

// Summary returns the latest run summary, if one was stored.
func (s *FindingStore) Summary() (*RunSummary, bool, error) {
	value, ok, err := s.ps.Get([]byte(summaryKey))
	if err != nil || !ok {
		return nil, false, err
	}
	var sum RunSummary
	if err := json.Unmarshal(value, &sum); err != nil {
		return nil, false, err
	}
	return &sum, true, nil
}

func (s *FindingStore) Close() error {
	return s.ps.Close()
}
