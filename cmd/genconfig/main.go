// Package main implements the genconfig tool that writes scheme.default.toml
// from config.ExampleConfig().
//
// It is invoked by go generate via the directive in internal/config/config.go.
package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"tools.zach/dev/eqscheme/internal/config"
)

func main() {
	result, err := generate(config.ExampleConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal: %v\n", err)
		os.Exit(1)
	}

	// go generate runs from the package directory (internal/config/).
	// ../../ reaches the repo root where configdata.go embeds the file.
	outPath := "../../scheme.default.toml"
	if err := os.WriteFile(outPath, []byte(result), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", outPath, err)
		os.Exit(1)
	}
	fmt.Printf("wrote scheme.default.toml\n")
}

// generate encodes cfg and annotates it with [config.ConfigDocs].
func generate(cfg *config.Config) (string, error) {
	var raw bytes.Buffer
	if err := toml.NewEncoder(&raw).Encode(cfg); err != nil {
		return "", err
	}

	out := []string{
		"# ///////////////////////////////////////////////",
		"# Eqscheme Scheme",
		"# ///////////////////////////////////////////////",
		"",
	}

	// Current TOML section path for field lookup
	var sectionStack []string
	// Doc keys already emitted, so omitted fields can be injected
	emittedKeys := map[string]bool{}
	// Array-of-table names whose header docs were written
	seenArrays := map[string]bool{}

	for _, line := range strings.Split(raw.String(), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// [[layers]]: docs and separator only before the first element
		if strings.HasPrefix(trimmed, "[[") {
			injectOmitted(&out, sectionStack, emittedKeys)
			section := strings.Trim(trimmed, "[] ")
			sectionStack = parseSectionPath(section)
			if !seenArrays[section] {
				seenArrays[section] = true
				out = appendSection(out, section)
				markAll(emittedKeys, section)
			} else {
				out = append(out, "")
			}
			out = append(out, trimmed)
			continue
		}

		if strings.HasPrefix(trimmed, "[") {
			injectOmitted(&out, sectionStack, emittedKeys)
			section := strings.Trim(trimmed, "[] ")
			sectionStack = parseSectionPath(section)
			out = appendSection(out, section)
			out = append(out, trimmed)
			continue
		}

		if !strings.Contains(trimmed, "=") || strings.HasPrefix(trimmed, "#") {
			out = append(out, trimmed)
			continue
		}

		key := strings.TrimSpace(strings.SplitN(trimmed, "=", 2)[0])
		fullPath := key
		if len(sectionStack) > 0 {
			fullPath = strings.Join(sectionStack, ".") + "." + key
		}
		doc, ok := config.ConfigDocs[fullPath]
		if !ok || emittedKeys[fullPath] {
			out = append(out, trimmed)
			continue
		}
		emittedKeys[fullPath] = true
		out = appendComment(out, doc.Comment)
		out = append(out, trimmed)
		for _, alt := range doc.Alternatives {
			out = append(out, "# "+alt)
		}
	}

	injectOmitted(&out, sectionStack, emittedKeys)

	return strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n", nil
}

// appendSection writes the separator and section-level docs for section.
func appendSection(out []string, section string) []string {
	out = append(out, "", fmt.Sprintf("# ///// %s /////", sectionName(section)), "")
	if doc, ok := config.ConfigDocs[section]; ok {
		out = appendComment(out, doc.Comment)
	}
	return out
}

func appendComment(out []string, comment string) []string {
	if comment == "" {
		return out
	}
	for _, cl := range strings.Split(comment, "\n") {
		out = append(out, "# "+cl)
	}
	return out
}

// markAll flags every doc key under prefix as emitted. Array elements repeat
// their keys, so per-field docs would be noise.
func markAll(emitted map[string]bool, prefix string) {
	for path := range config.ConfigDocs {
		if strings.HasPrefix(path, prefix+".") {
			emitted[path] = true
		}
	}
}

// injectOmitted appends commented-out entries for [config.ConfigDocs] keys that
// belong to the current section but were not emitted by the TOML encoder
// (fields with omitempty holding their zero value). Keys are sorted for
// deterministic ordering.
func injectOmitted(out *[]string, sectionStack []string, emitted map[string]bool) {
	if len(sectionStack) == 0 {
		return
	}
	prefix := strings.Join(sectionStack, ".") + "."

	var omitted []string
	for path := range config.ConfigDocs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, prefix)
		if strings.Contains(rest, ".") || emitted[path] || isSection(path) {
			continue
		}
		omitted = append(omitted, path)
	}
	sort.Strings(omitted)

	for _, path := range omitted {
		doc := config.ConfigDocs[path]
		*out = append(*out, "")
		*out = appendComment(*out, doc.Comment)
		for _, alt := range doc.Alternatives {
			*out = append(*out, "# "+alt)
		}
		emitted[path] = true
	}
}

// isSection reports whether path documents a table rather than a field.
func isSection(path string) bool {
	for p := range config.ConfigDocs {
		if strings.HasPrefix(p, path+".") {
			return true
		}
	}
	return false
}

// parseSectionPath splits a dotted TOML section header (e.g. "spiral.twin")
// into its path segments (["spiral", "twin"]).
func parseSectionPath(section string) []string {
	return strings.Split(section, ".")
}

// sectionName returns the last dotted segment of a section header with its
// first letter capitalized. For example, "spiral.twin" yields "Twin".
func sectionName(section string) string {
	parts := strings.Split(section, ".")
	last := parts[len(parts)-1]
	if len(last) == 0 {
		return ""
	}
	return strings.ToUpper(last[:1]) + last[1:]
}
