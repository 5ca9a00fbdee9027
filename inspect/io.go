package inspect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/bazeldeps/resolve/bzlmodule"
	"github.com/bazeldeps/resolve/version"
)

func parseKeyString(name, ver string) (bzlmodule.ModuleKey, error) {
	v, err := version.Parse(ver)
	if err != nil {
		return bzlmodule.ModuleKey{}, fmt.Errorf("inspect: module %s: %w", name, err)
	}
	return bzlmodule.ModuleKey{Name: name, Version: v}, nil
}

// Document is the JSON-serializable form of an augmented graph: a flat,
// deterministically ordered module list rather than a Go map, so Export's
// output is stable across runs and diffable in version control.
type Document struct {
	Root    string         `json:"root"`
	Modules []ModuleRecord `json:"modules"`
}

// ModuleRecord is one module's diagnostic record within a Document.
type ModuleRecord struct {
	Name               string            `json:"name"`
	Version            string            `json:"version"`
	CompatibilityLevel int               `json:"compatibility_level"`
	Deps               map[string]string `json:"deps"`
	Dependants         []string          `json:"dependants,omitempty"`
	OriginalDependants []string          `json:"original_dependants,omitempty"`
	UnusedDeps         []string          `json:"unused_deps,omitempty"`
	Loaded             bool              `json:"loaded"`
}

// Export converts an augmented graph into a Document, with modules ordered
// by BFS discovery order: order must be the same Order slice Discovery and
// Selection threaded through (§4.3.5's ordering contract), so re-importing
// and re-exporting a graph that hasn't changed reproduces byte-identical
// output.
func Export(graph map[bzlmodule.ModuleKey]*bzlmodule.AugmentedModule, order []bzlmodule.ModuleKey) *Document {
	doc := &Document{Root: bzlmodule.Root.String()}

	for _, key := range order {
		aug, ok := graph[key]
		if !ok {
			continue
		}
		doc.Modules = append(doc.Modules, moduleRecord(key, aug))
	}

	return doc
}

func moduleRecord(key bzlmodule.ModuleKey, aug *bzlmodule.AugmentedModule) ModuleRecord {
	deps := make(map[string]string, len(aug.Deps))
	for repoName, target := range aug.Deps {
		deps[repoName] = target.String()
	}

	var dependants, originalDependants []string
	for _, d := range aug.Dependants {
		dependants = append(dependants, d.String())
	}
	for _, d := range aug.OriginalDependants {
		originalDependants = append(originalDependants, d.String())
	}
	sort.Strings(dependants)
	sort.Strings(originalDependants)

	var unused []string
	if aug.UnusedDeps != nil {
		unused = aug.UnusedDeps.Keys()
		sort.Strings(unused)
	}

	return ModuleRecord{
		Name:                key.Name,
		Version:             key.Version.String(),
		CompatibilityLevel:  aug.CompatibilityLevel,
		Deps:                deps,
		Dependants:          dependants,
		OriginalDependants:  originalDependants,
		UnusedDeps:          unused,
		Loaded:              aug.Loaded,
	}
}

// Marshal serializes doc with sorted map keys and no HTML escaping, for a
// diagnostics artifact meant to be read by humans or diffed in git.
func (doc *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("inspect: marshal document: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTo writes the marshaled document to w.
func (doc *Document) WriteTo(w io.Writer) (int64, error) {
	data, err := doc.Marshal()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Import parses a previously exported Document back from JSON. It does not
// reconstruct a full AugmentedModule graph (Dependants/UnusedDeps are
// derived data, not a stable wire format) — callers that need to act on an
// imported resolution compare it with Diff's ModuleChange/ModuleUpgrade
// shapes, keyed by name and version alone.
func Import(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("inspect: parse document: %w", err)
	}
	return &doc, nil
}

// AsAugmentedGraph rebuilds a minimal map[ModuleKey]*AugmentedModule from
// an imported Document, suitable as the "old" side of Diff when a live
// resolution isn't available to recompute it.
func (doc *Document) AsAugmentedGraph() (map[bzlmodule.ModuleKey]*bzlmodule.AugmentedModule, error) {
	out := make(map[bzlmodule.ModuleKey]*bzlmodule.AugmentedModule, len(doc.Modules))
	for _, rec := range doc.Modules {
		key, err := parseKeyString(rec.Name, rec.Version)
		if err != nil {
			return nil, err
		}
		out[key] = &bzlmodule.AugmentedModule{
			Module: bzlmodule.Module{
				Key:                key,
				Name:               rec.Name,
				Version:            key.Version,
				CompatibilityLevel: rec.CompatibilityLevel,
			},
			Loaded: rec.Loaded,
		}
	}
	return out, nil
}
