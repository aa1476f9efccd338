// Package manifest reads the template package.json and derives the
// project's own package.json from it.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/iancoleman/orderedmap"
	"github.com/spf13/afero"

	"ts-backend-starter/pkg/variant"
)

// DefaultDescription replaces the template's description.
const DefaultDescription = "TypeScript Express backend generated by ts-backend-starter"

const (
	keyName            = "name"
	keyDescription     = "description"
	keyDependencies    = "dependencies"
	keyDevDependencies = "devDependencies"
)

// Manifest is a package.json document. Keys keep the order they had in the
// source so unrelated fields pass through untouched.
type Manifest struct {
	doc *orderedmap.OrderedMap
}

// Parse decodes a package.json document. The top level must be an object.
func Parse(data []byte) (*Manifest, error) {
	doc := orderedmap.New()
	doc.SetEscapeHTML(false)
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &Manifest{doc: doc}, nil
}

// Load reads and parses the manifest at path.
func Load(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func (m *Manifest) Name() string { return m.stringAt(keyName) }

func (m *Manifest) SetName(name string) { m.doc.Set(keyName, name) }

func (m *Manifest) Description() string { return m.stringAt(keyDescription) }

func (m *Manifest) SetDescription(desc string) { m.doc.Set(keyDescription, desc) }

// Keys returns the top-level keys in document order.
func (m *Manifest) Keys() []string { return m.doc.Keys() }

// Dependencies returns a copy of the dependency map.
func (m *Manifest) Dependencies() map[string]string { return m.section(keyDependencies) }

// DevDependencies returns a copy of the dev-dependency map.
func (m *Manifest) DevDependencies() map[string]string { return m.section(keyDevDependencies) }

// ApplyVariant makes the dependency sections match v: entries owned only by
// other variants are removed from both sections, then v's own entries are
// inserted. Sections are left sorted by package name.
func (m *Manifest) ApplyVariant(v variant.Variant) error {
	spec, ok := variant.Lookup(v)
	if !ok {
		return fmt.Errorf("unknown variant %q", v)
	}

	foreignDeps, foreignDev := v.Foreign()
	foreign := append(append([]string{}, foreignDeps...), foreignDev...)

	m.editSection(keyDependencies, foreign, spec.Dependencies)
	m.editSection(keyDevDependencies, foreign, spec.DevDependencies)
	return nil
}

// Encode renders the manifest as two-space indented JSON with a trailing
// newline. Strings are written as npm writes them, without HTML escapes.
func (m *Manifest) Encode() ([]byte, error) {
	var compact bytes.Buffer
	if err := writeValue(&compact, m.doc); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// writeValue writes v as compact JSON. Objects keep their key order.
func writeValue(buf *bytes.Buffer, v interface{}) error {
	switch t := v.(type) {
	case orderedmap.OrderedMap:
		return writeObject(buf, &t)
	case *orderedmap.OrderedMap:
		return writeObject(buf, t)
	case []interface{}:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	}

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates each value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

func writeObject(buf *bytes.Buffer, obj *orderedmap.OrderedMap) error {
	buf.WriteByte('{')
	for i, k := range obj.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeValue(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		v, _ := obj.Get(k)
		if err := writeValue(buf, v); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func (m *Manifest) editSection(key string, remove []string, add map[string]string) {
	obj, exists := m.objectAt(key)
	if !exists {
		if len(add) == 0 {
			return
		}
		obj = orderedmap.New()
		obj.SetEscapeHTML(false)
	}

	for _, name := range remove {
		obj.Delete(name)
	}
	for name, version := range add {
		obj.Set(name, version)
	}
	obj.SortKeys(sort.Strings)

	m.doc.Set(key, obj)
}

func (m *Manifest) section(key string) map[string]string {
	out := map[string]string{}
	obj, ok := m.objectAt(key)
	if !ok {
		return out
	}
	for _, name := range obj.Keys() {
		v, _ := obj.Get(name)
		if s, ok := v.(string); ok {
			out[name] = s
		} else {
			out[name] = fmt.Sprint(v)
		}
	}
	return out
}

func (m *Manifest) objectAt(key string) (*orderedmap.OrderedMap, bool) {
	raw, ok := m.doc.Get(key)
	if !ok {
		return nil, false
	}
	switch v := raw.(type) {
	case *orderedmap.OrderedMap:
		return v, true
	case orderedmap.OrderedMap:
		return &v, true
	}
	return nil, false
}

func (m *Manifest) stringAt(key string) string {
	raw, ok := m.doc.Get(key)
	if !ok {
		return ""
	}
	s, _ := raw.(string)
	return s
}
