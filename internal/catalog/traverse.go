package catalog

// walkObjects visits every JSON object reachable from root in depth-first
// order, using an explicit worklist rather than recursion: response nesting
// depth is under the server's control, not ours. visit returning false stops
// the walk early.
func walkObjects(root any, visit func(obj map[string]any) bool) {
	stack := []any{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch value := node.(type) {
		case map[string]any:
			if !visit(value) {
				return
			}
			// Push in reverse-sorted-insertion order is not needed; map
			// iteration order is already unspecified and callers must not
			// depend on sibling ordering.
			for _, child := range value {
				stack = append(stack, child)
			}
		case []any:
			for i := len(value) - 1; i >= 0; i-- {
				stack = append(stack, value[i])
			}
		}
	}
}

// findString walks root for the first object carrying key with a non-empty
// string value.
func findString(root any, key string) string {
	found := ""
	walkObjects(root, func(obj map[string]any) bool {
		if value, ok := obj[key].(string); ok && value != "" {
			found = value
			return false
		}
		return true
	})
	return found
}

func stringField(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := obj[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}
