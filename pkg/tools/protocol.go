package tools

import "strings"

// ParseCall recognizes a tool call only when the whole trimmed text is a JSON
// object naming a registered tool and carrying all of its required arguments.
// Anything else is an ordinary reply, never an error.
func (r *Registry) ParseCall(text string) (Call, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") || !strings.HasSuffix(text, "}") {
		return Call{}, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return Call{}, false
	}

	name, ok := obj["tool"].(string)
	if !ok {
		return Call{}, false
	}
	t, ok := r.Lookup(name)
	if !ok {
		return Call{}, false
	}
	for _, arg := range t.RequiredArgs() {
		if _, present := obj[arg]; !present {
			return Call{}, false
		}
	}

	args := make(map[string]any, len(obj))
	for k, v := range obj {
		if k == "tool" {
			continue
		}
		args[k] = v
	}
	return Call{Tool: name, Args: args}, true
}
