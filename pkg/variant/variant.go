// Package variant describes the database integrations a scaffolded project
// can be generated with.
package variant

import (
	"fmt"
	"sort"
	"strings"
)

// Variant is the database integration a project is generated for.
type Variant string

const (
	// MongoDB is the document-store variant.
	MongoDB Variant = "mongodb"
	// PostgreSQL is the relational-store variant, wired through Prisma.
	PostgreSQL Variant = "postgresql"
)

// Spec is the static data attached to a variant.
type Spec struct {
	Variant     Variant
	Label       string
	Description string

	// Dependencies and DevDependencies are inserted into the manifest.
	Dependencies    map[string]string
	DevDependencies map[string]string

	// Exclude lists template paths omitted from the copy. Patterns follow
	// materialize.NewPatternSkipper.
	Exclude []string

	// SchemaCommand runs in the new project after dependencies are installed.
	SchemaCommand []string
}

var catalogue = []Spec{
	{
		Variant:     MongoDB,
		Label:       "MongoDB",
		Description: "document store via mongoose",
		Dependencies: map[string]string{
			"mongoose": "^8.9.5",
		},
	},
	{
		Variant:     PostgreSQL,
		Label:       "PostgreSQL",
		Description: "relational store via Prisma",
		Dependencies: map[string]string{
			"@prisma/client": "^6.3.1",
		},
		DevDependencies: map[string]string{
			"prisma": "^6.3.1",
		},
		Exclude:       []string{"/database/"},
		SchemaCommand: []string{"npx", "prisma", "init"},
	},
}

// All returns every variant in menu order.
func All() []Spec {
	out := make([]Spec, len(catalogue))
	copy(out, catalogue)
	return out
}

// Lookup returns the spec for v.
func Lookup(v Variant) (Spec, bool) {
	for _, s := range catalogue {
		if s.Variant == v {
			return s, true
		}
	}
	return Spec{}, false
}

// Parse accepts a variant name case-insensitively. A few common aliases are
// accepted as well.
func Parse(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mongodb", "mongo":
		return MongoDB, nil
	case "postgresql", "postgres", "pg":
		return PostgreSQL, nil
	}
	return "", fmt.Errorf("unknown database %q (expected one of: %s)", name, strings.Join(Names(), ", "))
}

// Names lists the canonical variant names.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for _, s := range catalogue {
		names = append(names, string(s.Variant))
	}
	return names
}

func (v Variant) String() string {
	return string(v)
}

// Spec returns the static data for v. Unknown variants yield an empty spec.
func (v Variant) Spec() Spec {
	s, _ := Lookup(v)
	return s
}

// Foreign returns the dependency names owned by variants other than v that v
// does not need itself. These must not appear in a manifest generated for v.
func (v Variant) Foreign() (deps, devDeps []string) {
	own := v.Spec()
	for _, s := range catalogue {
		if s.Variant == v {
			continue
		}
		for name := range s.Dependencies {
			if _, ok := own.Dependencies[name]; !ok {
				deps = append(deps, name)
			}
		}
		for name := range s.DevDependencies {
			if _, ok := own.DevDependencies[name]; !ok {
				devDeps = append(devDeps, name)
			}
		}
	}
	sort.Strings(deps)
	sort.Strings(devDeps)
	return deps, devDeps
}
