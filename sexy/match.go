package sexy

import (
	"fmt"
	"strconv"
)

// Wildcard is the pattern symbol that matches any single datum.
const Wildcard = "_"

// Match reports whether actual conforms to pattern. In a pattern the
// symbol _ matches any datum and ... inside a list matches zero or more
// items. The returned error names the path of the first mismatch.
func Match(pattern, actual *Node) error {
	return match(pattern, actual, "root")
}

// MatchString parses both arguments and matches them.
func MatchString(pattern, actual string) error {
	p, err := Parse(pattern)
	if err != nil {
		return fmt.Errorf("pattern: %w", err)
	}
	a, err := Parse(actual)
	if err != nil {
		return fmt.Errorf("actual: %w", err)
	}
	return Match(p, a)
}

func match(pattern, actual *Node, path string) error {
	if pattern.Type == NodeSymbol && pattern.Text == Wildcard {
		return nil
	}
	if pattern.Type != actual.Type {
		return fmt.Errorf("at %s: expected %s %s, got %s %s", path, pattern.Type, pattern, actual.Type, actual)
	}
	if pattern.Type != NodeList {
		if pattern.Text != actual.Text {
			return fmt.Errorf("at %s: expected %s, got %s", path, pattern, actual)
		}
		return nil
	}
	return matchItems(pattern.Items, actual.Items, path, 0)
}

func matchItems(patterns, actuals []*Node, path string, index int) error {
	if len(patterns) == 0 {
		if len(actuals) != 0 {
			return fmt.Errorf("at %s: unexpected extra item %s", itemPath(path, index), actuals[0])
		}
		return nil
	}

	if patterns[0].Type == NodeEllipsis {
		var err error
		for skip := 0; skip <= len(actuals); skip++ {
			if err = matchItems(patterns[1:], actuals[skip:], path, index+skip); err == nil {
				return nil
			}
		}
		return err
	}

	if len(actuals) == 0 {
		return fmt.Errorf("at %s: missing item %s", itemPath(path, index), patterns[0])
	}
	if err := match(patterns[0], actuals[0], itemPath(path, index)); err != nil {
		return err
	}
	return matchItems(patterns[1:], actuals[1:], path, index+1)
}

func itemPath(path string, index int) string {
	return path + "." + strconv.Itoa(index)
}
