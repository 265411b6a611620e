package giellamorph

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// TagClasses maps a tag class name (e.g. "Num") to its concrete tags in
// source order (e.g. Sg, Pl, Ess).
type TagClasses map[string][]string

// validTagLine reports whether a source line carries data: blank lines,
// % comments and lines containing "=" are dropped.
func validTagLine(line string) bool {
	return strings.TrimSpace(line) != "" &&
		!strings.HasPrefix(line, "%") &&
		!strings.Contains(line, "=")
}

// scanTagLines calls fn with every valid, trimmed line of r.
func scanTagLines(r io.Reader, fn func(line string)) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := sc.Text(); validTagLine(line) {
			fn(strings.TrimSpace(line))
		}
	}
	return sc.Err()
}

// ParseTagClasses reads a korpustags file. A line "#Name" opens the class
// Name; the first field of each following line is one of its tags. Tags
// that appear before the first class header belong to no class.
func ParseTagClasses(r io.Reader) (TagClasses, error) {
	classes := make(TagClasses)
	var (
		name string
		tags []string
	)
	flush := func() {
		if name != "" {
			classes[name] = append(classes[name], tags...)
		}
		tags = nil
	}

	err := scanTagLines(r, func(line string) {
		if strings.HasPrefix(line, "#") {
			flush()
			name = strings.TrimSpace(line[1:])
			return
		}
		tags = append(tags, strings.Fields(line)[0])
	})
	if err != nil {
		return nil, err
	}
	flush()
	return classes, nil
}

// LoadTagClasses reads the tag definition file at path.
func LoadTagClasses(path string) (TagClasses, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sourceError("open tag classes", path, err)
	}
	defer f.Close()

	classes, err := ParseTagClasses(f)
	if err != nil {
		return nil, sourceError("read tag classes", path, err)
	}
	return classes, nil
}
