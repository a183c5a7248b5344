package eventlog

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/grovetools/lograt/errors"
	"github.com/grovetools/lograt/pkg/fsevent"
)

// Index maps an event kind to the distinct paths observed for it.
// Path lists are kept sorted.
type Index map[string][]string

// Add records path under kind and reports whether it was new.
func (idx Index) Add(kind, path string) bool {
	paths := idx[kind]
	i := sort.SearchStrings(paths, path)
	if i < len(paths) && paths[i] == path {
		return false
	}
	paths = append(paths, "")
	copy(paths[i+1:], paths[i:])
	paths[i] = path
	idx[kind] = paths
	return true
}

// Merge adds every path in other to idx.
func (idx Index) Merge(other Index) {
	for kind, paths := range other {
		for _, path := range paths {
			idx.Add(kind, path)
		}
	}
}

// Paths returns the paths recorded under kind.
func (idx Index) Paths(kind string) []string {
	return idx[kind]
}

// Count returns how many distinct paths are recorded under kind.
func (idx Index) Count(kind string) int {
	return len(idx[kind])
}

// Kinds returns the recorded kinds in lexical order.
func (idx Index) Kinds() []string {
	kinds := make([]string, 0, len(idx))
	for kind := range idx {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// normalize sorts and de-duplicates every path list, as read from disk.
func (idx Index) normalize() Index {
	clean := make(Index, len(idx))
	for kind, paths := range idx {
		for _, path := range paths {
			clean.Add(kind, path)
		}
	}
	return clean
}

// WriteAnalysis records ev.Path under ev.Kind in the analysis file.
//
// The existing file is read, merged with the new path and written back
// whole. A missing or unparseable file is replaced by an index holding
// only this event; the corrupt content is not recovered.
func (l *Logger) WriteAnalysis(ev fsevent.Event) error {
	l.analysisMu.Lock()
	defer l.analysisMu.Unlock()

	unlock, err := lockFile(l.analysisPath + ".lock")
	if err != nil {
		return errors.AnalysisWrite(l.analysisPath, err)
	}
	defer unlock()

	index, err := readIndex(l.analysisPath)
	switch {
	case err == nil:
	case os.IsNotExist(err):
		index = Index{}
	case isDecodeError(err):
		l.logger.WithError(err).Warnf("Discarding unreadable analysis file %s", l.analysisPath)
		index = Index{}
	default:
		return errors.AnalysisWrite(l.analysisPath, err)
	}

	if !index.Add(ev.Kind.String(), ev.Path) {
		// Already recorded; rewriting would produce identical content.
		return nil
	}
	if err := writeIndex(l.analysisPath, index); err != nil {
		return errors.AnalysisWrite(l.analysisPath, err)
	}
	return nil
}

// ReadAnalysis loads the analysis file. A missing file yields an empty index.
func (l *Logger) ReadAnalysis() (Index, error) {
	l.analysisMu.Lock()
	defer l.analysisMu.Unlock()
	return ReadIndexFile(l.analysisPath)
}

// ReadIndexFile loads an analysis file from path. A missing file yields an
// empty index.
func ReadIndexFile(path string) (Index, error) {
	index, err := readIndex(path)
	if os.IsNotExist(err) {
		return Index{}, nil
	}
	return index, err
}

func readIndex(path string) (Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, err
	}
	return index.normalize(), nil
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return stderrors.As(err, &syntaxErr) || stderrors.As(err, &typeErr)
}

// writeIndex replaces path atomically so readers never see a partial file.
func writeIndex(path string, index Index) error {
	data, err := json.MarshalIndent(index, "", "    ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
