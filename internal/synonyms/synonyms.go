// Package synonyms loads the field synonym dictionary used to steer
// extraction prompts. Lease documents name the same concept a dozen
// ways ("base rent", "minimum rent", "fixed rent"); the dictionary
// maps each schema field to the phrasings worth hunting for and the
// ones that look similar but must be ignored.
package synonyms

import (
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Entry holds the alternate phrasings for one schema field.
type Entry struct {
	Synonyms      []string `yaml:"synonyms"`
	Disqualifiers []string `yaml:"disqualifiers,omitempty"`
}

// Table maps schema field names to their synonym entries.
type Table struct {
	Fields map[string]Entry `yaml:"fields"`
}

// Load reads a synonym dictionary from a YAML file. A missing file is
// not an error: extraction works without synonyms, just with a thinner
// prompt, so callers get an empty table and a warning instead.
func Load(path string) (*Table, error) {
	if path == "" {
		return &Table{Fields: map[string]Entry{}}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Warn("synonyms: dictionary not found, extraction prompts will omit synonyms",
				zap.String("path", path))
			return &Table{Fields: map[string]Entry{}}, nil
		}
		return nil, eris.Wrapf(err, "synonyms: read %s", path)
	}

	var wrapper struct {
		Fields map[string]Entry `yaml:"fields"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrapf(err, "synonyms: parse %s", path)
	}

	t := &Table{Fields: wrapper.Fields}
	if t.Fields == nil {
		t.Fields = map[string]Entry{}
	}
	return t, nil
}

// Get returns the entry for a field, or an empty entry when none is
// configured.
func (t *Table) Get(field string) Entry {
	if t == nil {
		return Entry{}
	}
	return t.Fields[field]
}

// Len reports how many fields have synonym entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Fields)
}

// PromptLines renders the dictionary as prompt-ready lines, one per
// field, in stable field-name order. Fields without synonyms are
// omitted.
func (t *Table) PromptLines() []string {
	if t == nil || len(t.Fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(t.Fields))
	for name := range t.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		e := t.Fields[name]
		if len(e.Synonyms) == 0 && len(e.Disqualifiers) == 0 {
			continue
		}
		var b strings.Builder
		b.WriteString("- ")
		b.WriteString(name)
		if len(e.Synonyms) > 0 {
			b.WriteString(": also appears as ")
			b.WriteString(strings.Join(e.Synonyms, ", "))
		}
		if len(e.Disqualifiers) > 0 {
			b.WriteString(" (do not confuse with ")
			b.WriteString(strings.Join(e.Disqualifiers, ", "))
			b.WriteString(")")
		}
		lines = append(lines, b.String())
	}
	return lines
}
