// Package prompts holds the agent's prompt templates. They live in agent.json,
// embedded at compile time, and use {{.Name}} placeholders.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
)

//go:embed agent.json
var agentFile []byte

// Key names one template in agent.json
type Key string

const (
	DiscoverJobs Key = "discover-jobs"
	AnalyzeJob   Key = "analyze-job"
	RefineResume Key = "refine-resume"
	ChatSystem   Key = "chat-system"
)

var placeholderPattern = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

var templates = sync.OnceValues(func() (map[Key]string, error) {
	return parse(agentFile)
})

func parse(data []byte) (map[Key]string, error) {
	var out map[Key]string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse prompt templates: %w", err)
	}
	return out, nil
}

func lookup(key Key) (string, error) {
	all, err := templates()
	if err != nil {
		return "", err
	}
	tmpl, ok := all[key]
	if !ok {
		return "", fmt.Errorf("prompt %q not found", key)
	}
	return tmpl, nil
}

// Render fills every placeholder of the template named by key.
// Values are inserted verbatim and are not expanded again.
// A placeholder with no entry in data is an error.
func Render(key Key, data map[string]string) (string, error) {
	tmpl, err := lookup(key)
	if err != nil {
		return "", err
	}
	return fill(tmpl, data)
}

func fill(tmpl string, data map[string]string) (string, error) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := data[name]
		if !ok {
			if !slices.Contains(missing, name) {
				missing = append(missing, name)
			}
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("missing prompt values: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// Placeholders returns the distinct placeholder names of a template in order of first use
func Placeholders(key Key) ([]string, error) {
	tmpl, err := lookup(key)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
		if !slices.Contains(names, m[1]) {
			names = append(names, m[1])
		}
	}
	return names, nil
}

// Keys returns the names of all embedded templates, sorted
func Keys() ([]Key, error) {
	all, err := templates()
	if err != nil {
		return nil, err
	}
	keys := make([]Key, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}
