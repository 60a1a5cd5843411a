package sexy

import (
	"fmt"
	"strings"

	"github.com/coregx/coregex"
)

// LinePattern is one compiled line of an asm assertion.
type LinePattern struct {
	Source string
	re     *coregex.Regexp
}

// CompileLinePatterns compiles every non-blank line of text as a regular
// expression that must match a whole line (leading and trailing blanks
// ignored). Lines starting with "#" are comments.
func CompileLinePatterns(text string) ([]LinePattern, error) {
	var patterns []LinePattern
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		re, err := coregex.Compile(`^(?:` + line + `)$`)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid pattern %q: %w", i+1, line, err)
		}
		patterns = append(patterns, LinePattern{Source: line, re: re})
	}
	return patterns, nil
}

// MatchLines checks that output contains lines matching patterns, in order.
// Other lines may appear between matches.
func MatchLines(patterns []LinePattern, output string) error {
	lines := strings.Split(output, "\n")
	next := 0
	for _, p := range patterns {
		found := false
		for next < len(lines) {
			line := strings.TrimSpace(lines[next])
			next++
			if p.re.MatchString(line) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("no line matching %q in output (in order)", p.Source)
		}
	}
	return nil
}

// CountMatches returns how many lines of output match p.
func CountMatches(p LinePattern, output string) int {
	n := 0
	for _, line := range strings.Split(output, "\n") {
		if p.re.MatchString(strings.TrimSpace(line)) {
			n++
		}
	}
	return n
}
