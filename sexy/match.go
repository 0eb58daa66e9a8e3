package sexy

import "fmt"

// Match checks actual against pattern. In a pattern the symbol _ matches any
// single datum and ... inside a list matches any run of items, including an
// empty one. The returned error names the path of the first mismatch.
func Match(pattern, actual *Node) error {
	return match(pattern, actual, "root")
}

func match(pattern, actual *Node, path string) error {
	if pattern.Type == NodeSymbol && pattern.Text == "_" {
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

	if !hasEllipsis(pattern.Items) {
		if len(pattern.Items) != len(actual.Items) {
			return fmt.Errorf("at %s: expected %d items, got %d in %s", path, len(pattern.Items), len(actual.Items), actual)
		}
		for i := range pattern.Items {
			if err := match(pattern.Items[i], actual.Items[i], fmt.Sprintf("%s.%d", path, i)); err != nil {
				return err
			}
		}
		return nil
	}

	if !matchItems(pattern.Items, actual.Items, path) {
		return fmt.Errorf("at %s: %s does not match %s", path, pattern, actual)
	}
	return nil
}

func hasEllipsis(items []*Node) bool {
	for _, item := range items {
		if item.Type == NodeEllipsis {
			return true
		}
	}
	return false
}

// matchItems matches a pattern list containing ellipses by backtracking.
func matchItems(patterns, items []*Node, path string) bool {
	if len(patterns) == 0 {
		return len(items) == 0
	}
	if patterns[0].Type == NodeEllipsis {
		for skip := 0; skip <= len(items); skip++ {
			if matchItems(patterns[1:], items[skip:], path) {
				return true
			}
		}
		return false
	}
	if len(items) == 0 {
		return false
	}
	if match(patterns[0], items[0], path) != nil {
		return false
	}
	return matchItems(patterns[1:], items[1:], path)
}
