package models

import (
	"regexp"
	"strconv"
	"strings"
)

// DiffLine is a single line of a hunk. A zero line number means the line
// does not exist on that side of the change: added lines carry only a
// new-file number, deleted lines only an old-file number, context lines
// both.
type DiffLine struct {
	Content string
	OldLine int
	NewLine int
}

// EffectiveLine returns the number used to address this line in review
// comments: the new-file number when present, the old-file number otherwise.
func (l *DiffLine) EffectiveLine() int {
	if l.NewLine > 0 {
		return l.NewLine
	}
	return l.OldLine
}

// DiffHunk is one contiguous changed region of a file
type DiffHunk struct {
	Header  string
	Changes []DiffLine
}

// DiffFile is one file entry of a unified diff. Empty paths mean absent;
// a file with no new path was deleted.
type DiffFile struct {
	OldPath string
	NewPath string
	Hunks   []DiffHunk
}

// EffectivePath returns the path used to address comments on this file,
// or "" when the entry carries no usable path at all.
func (f *DiffFile) EffectivePath() string {
	if f.NewPath != "" {
		return f.NewPath
	}
	return f.OldPath
}

// IsDeletion reports whether the file no longer exists after the change
func (f *DiffFile) IsDeletion() bool {
	return f.NewPath == "" && f.OldPath != ""
}

// ComparedFile is one entry of a revision comparison. Patch is empty for
// binary and otherwise unsupported files.
type ComparedFile struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Patch    string `json:"patch"`
}

var hunkHeaderRegexp = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// hunkRange decodes one side of a hunk header: start line and line
// count, the count defaulting to 1 when the header omits it.
func hunkRange(start, count string) (int, int) {
	s, _ := strconv.Atoi(start)
	n := 1
	if count != "" {
		n, _ = strconv.Atoi(count)
	}
	return s, n
}

// ParseDiff parses unified-diff text into an ordered file/hunk/line model.
// It is purely syntactic and never fails: malformed or empty input yields
// nil, unrecognized lines are ignored. Fragments without ---/+++ file
// headers (as returned by the compare API) are accepted; a bare hunk
// header opens an anonymous file entry.
func ParseDiff(text string) []DiffFile {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	if n := len(lines); lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var (
		files   []DiffFile
		file    *DiffFile
		hunk    *DiffHunk
		oldLine int
		newLine int
		oldLeft int
		newLeft int
	)

	closeHunk := func() {
		if file != nil && hunk != nil && len(hunk.Changes) > 0 {
			file.Hunks = append(file.Hunks, *hunk)
		}
		hunk = nil
		oldLeft, newLeft = 0, 0
	}
	closeFile := func() {
		closeHunk()
		if file != nil {
			files = append(files, *file)
		}
		file = nil
	}

	for _, line := range lines {
		// While the hunk's declared line counts are unexhausted, every
		// line belongs to the hunk. This must run before the header
		// prefixes are tested: a deleted "-- foo" renders as "--- foo"
		// and an added "++ bar" as "+++ bar", which would otherwise be
		// consumed as file headers mid-hunk.
		if hunk != nil {
			switch {
			case strings.HasPrefix(line, "\\"):
				// "\ No newline at end of file" markers carry no line of code.
				continue

			case strings.HasPrefix(line, "+") && newLeft > 0:
				hunk.Changes = append(hunk.Changes, DiffLine{Content: line, NewLine: newLine})
				newLine++
				newLeft--
				continue

			case strings.HasPrefix(line, "-") && oldLeft > 0:
				hunk.Changes = append(hunk.Changes, DiffLine{Content: line, OldLine: oldLine})
				oldLine++
				oldLeft--
				continue

			case (line == "" || strings.HasPrefix(line, " ")) && (oldLeft > 0 || newLeft > 0):
				hunk.Changes = append(hunk.Changes, DiffLine{Content: line, OldLine: oldLine, NewLine: newLine})
				oldLine++
				newLine++
				if oldLeft > 0 {
					oldLeft--
				}
				if newLeft > 0 {
					newLeft--
				}
				continue
			}
		}

		switch {
		case strings.HasPrefix(line, "diff --git"):
			closeFile()
			file = &DiffFile{}

		case strings.HasPrefix(line, "--- "):
			// A source header outside an explicit "diff --git" block starts
			// a new file entry, as in concatenated compare fragments.
			if file == nil || hunk != nil || len(file.Hunks) > 0 {
				closeFile()
				file = &DiffFile{}
			}
			file.OldPath = normalizeDiffPath(line[4:])

		case strings.HasPrefix(line, "+++ "):
			if file == nil {
				file = &DiffFile{}
			}
			file.NewPath = normalizeDiffPath(line[4:])

		case strings.HasPrefix(line, "@@"):
			closeHunk()
			m := hunkHeaderRegexp.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if file == nil {
				// Headerless fragment: open an anonymous entry so the hunk
				// structure survives; the pipeline skips pathless files.
				file = &DiffFile{}
			}
			oldLine, oldLeft = hunkRange(m[1], m[2])
			newLine, newLeft = hunkRange(m[3], m[4])
			hunk = &DiffHunk{Header: line}
		}
		// Anything else is noise between hunks or past a hunk's declared
		// counts: index lines, mode lines, stray text. Ignored.
	}
	closeFile()

	return files
}

// normalizeDiffPath strips the diff-specific decorations from a ---/+++
// header value: a/ and b/ prefixes, trailing timestamps, and the /dev/null
// marker for absent files.
func normalizeDiffPath(raw string) string {
	p := strings.TrimSpace(raw)
	if i := strings.IndexByte(p, '\t'); i >= 0 {
		p = strings.TrimSpace(p[:i])
	}
	if p == "/dev/null" {
		return ""
	}
	if strings.HasPrefix(p, "a/") {
		return p[2:]
	}
	if strings.HasPrefix(p, "b/") {
		return p[2:]
	}
	return p
}
