// Package schemas holds the JSON Schemas that generated agent responses must satisfy.
package schemas

import "embed"

// Schema file names
const (
	Discovery  = "discovery.schema.json"
	Analysis   = "analysis.schema.json"
	Refinement = "refinement.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Load returns the raw content of an embedded schema file
func Load(name string) ([]byte, error) {
	return files.ReadFile(name)
}

// Names lists every embedded schema
func Names() []string {
	return []string{Discovery, Analysis, Refinement}
}
