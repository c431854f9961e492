package xcode

import (
	"os"
	"strings"
)

// buildEnvWith creates a copy of the current environment with key set to
// value, replacing any existing entry.
func buildEnvWith(key, value string) []string {
	env := os.Environ()
	result := make([]string, 0, len(env)+1)
	prefix := key + "="
	set := false

	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			result = append(result, prefix+value)
			set = true
		} else {
			result = append(result, e)
		}
	}

	if !set {
		result = append(result, prefix+value)
	}

	return result
}
