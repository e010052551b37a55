package staging

import (
	"slices"
	"strconv"
	"strings"
)

// StagedFile is a local file selected for upload but not yet submitted.
type StagedFile struct {
	ID        uint64 // assigned by Area when the file is staged
	Name      string
	MimeType  string // may be empty
	SizeBytes int64
	Path      string // where the content is read from at submit time
}

type Snapshot struct {
	Files      []StagedFile
	Count      int
	TotalBytes int64
}

// Area is an insertion-ordered list of staged files. Duplicates are allowed.
// It is not safe for concurrent use; callers serialize access.
type Area struct {
	files  []StagedFile
	nextID uint64
}

// Add appends files to the end, preserving their order.
func (a *Area) Add(files ...StagedFile) {
	for _, f := range files {
		a.nextID++
		f.ID = a.nextID
		if f.SizeBytes < 0 {
			f.SizeBytes = 0
		}
		a.files = append(a.files, f)
	}
}

// RemoveAt removes the entry at index. Out-of-range indexes are ignored.
func (a *Area) RemoveAt(index int) bool {
	if index < 0 || index >= len(a.files) {
		return false
	}
	a.files = slices.Delete(a.files, index, index+1)
	return true
}

// RemoveAtString is RemoveAt for an index that arrives as UI text.
// Anything that is not a plain integer is ignored.
func (a *Area) RemoveAtString(raw string) bool {
	idx, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return a.RemoveAt(idx)
}

// Discard removes the entries with the given IDs and keeps everything else.
func (a *Area) Discard(ids ...uint64) int {
	drop := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	before := len(a.files)
	a.files = slices.DeleteFunc(a.files, func(f StagedFile) bool {
		_, ok := drop[f.ID]
		return ok
	})
	return before - len(a.files)
}

func (a *Area) Clear() {
	a.files = nil
}

// Replace swaps the whole staged set for files.
func (a *Area) Replace(files []StagedFile) {
	a.files = nil
	a.Add(files...)
}

func (a *Area) Len() int {
	return len(a.files)
}

// Snapshot returns a copy of the staged files with count and total size
// recomputed from the members.
func (a *Area) Snapshot() Snapshot {
	s := Snapshot{
		Files: slices.Clone(a.files),
		Count: len(a.files),
	}
	for _, f := range a.files {
		s.TotalBytes += f.SizeBytes
	}
	return s
}
