package manifest

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ts-backend-starter/pkg/variant"
)

const templateManifest = `{
  "name": "ts-backend-starter-template",
  "version": "1.0.0",
  "description": "Template",
  "scripts": {
    "dev": "nodemon index.ts"
  },
  "dependencies": {
    "express": "^4.21.2",
    "mongoose": "^8.9.5",
    "cors": "^2.8.5"
  },
  "devDependencies": {
    "typescript": "^5.7.3"
  },
  "license": "MIT"
}`

func TestParse_KeepsKeyOrder(t *testing.T) {
	m, err := Parse([]byte(templateManifest))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "version", "description", "scripts", "dependencies", "devDependencies", "license"}, m.Keys())
	assert.Equal(t, "ts-backend-starter-template", m.Name())
	assert.Equal(t, "Template", m.Description())
}

func TestParse_Malformed(t *testing.T) {
	tests := map[string]string{
		"truncated": `{"name": `,
		"array":     `["a"]`,
		"empty":     ``,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestApplyVariant_PostgreSQL(t *testing.T) {
	m, err := Parse([]byte(templateManifest))
	require.NoError(t, err)

	require.NoError(t, m.ApplyVariant(variant.PostgreSQL))

	deps := m.Dependencies()
	assert.NotContains(t, deps, "mongoose")
	assert.Equal(t, "^6.3.1", deps["@prisma/client"])
	assert.Equal(t, "^4.21.2", deps["express"])

	dev := m.DevDependencies()
	assert.Contains(t, dev, "prisma")
	assert.Contains(t, dev, "typescript")
}

func TestApplyVariant_MongoDB(t *testing.T) {
	withPrisma := strings.Replace(templateManifest, `"cors": "^2.8.5"`, `"cors": "^2.8.5", "@prisma/client": "^6.0.0"`, 1)
	withPrisma = strings.Replace(withPrisma, `"typescript": "^5.7.3"`, `"typescript": "^5.7.3", "prisma": "^6.0.0"`, 1)

	m, err := Parse([]byte(withPrisma))
	require.NoError(t, err)

	require.NoError(t, m.ApplyVariant(variant.MongoDB))

	assert.NotContains(t, m.Dependencies(), "@prisma/client")
	assert.NotContains(t, m.DevDependencies(), "prisma")
	assert.Contains(t, m.Dependencies(), "mongoose")
}

func TestApplyVariant_NoCrossVariantLeakage(t *testing.T) {
	for _, spec := range variant.All() {
		t.Run(spec.Variant.String(), func(t *testing.T) {
			m, err := Parse([]byte(templateManifest))
			require.NoError(t, err)
			require.NoError(t, m.ApplyVariant(spec.Variant))

			deps, devDeps := spec.Variant.Foreign()
			for _, name := range append(deps, devDeps...) {
				assert.NotContains(t, m.Dependencies(), name)
				assert.NotContains(t, m.DevDependencies(), name)
			}
			for name := range spec.Dependencies {
				assert.Contains(t, m.Dependencies(), name)
			}
			for name := range spec.DevDependencies {
				assert.Contains(t, m.DevDependencies(), name)
			}
		})
	}
}

func TestApplyVariant_SortsDependencies(t *testing.T) {
	m, err := Parse([]byte(templateManifest))
	require.NoError(t, err)
	require.NoError(t, m.ApplyVariant(variant.PostgreSQL))

	out, err := m.Encode()
	require.NoError(t, err)

	text := string(out)
	assert.Less(t, strings.Index(text, `"@prisma/client"`), strings.Index(text, `"cors"`))
	assert.Less(t, strings.Index(text, `"cors"`), strings.Index(text, `"express"`))
}

func TestApplyVariant_CreatesMissingSection(t *testing.T) {
	m, err := Parse([]byte(`{"name": "x"}`))
	require.NoError(t, err)

	require.NoError(t, m.ApplyVariant(variant.PostgreSQL))

	assert.Equal(t, []string{"name", "dependencies", "devDependencies"}, m.Keys())
}

func TestApplyVariant_Unknown(t *testing.T) {
	m, err := Parse([]byte(`{}`))
	require.NoError(t, err)

	assert.Error(t, m.ApplyVariant(variant.Variant("sqlite")))
}

func TestEncode_Format(t *testing.T) {
	m, err := Parse([]byte(`{"name":"a","private":true,"files":["dist"]}`))
	require.NoError(t, err)

	out, err := m.Encode()
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"name\": \"a\",\n  \"private\": true,\n  \"files\": [\n    \"dist\"\n  ]\n}\n", string(out))
}

func TestEncode_KeepsShellOperators(t *testing.T) {
	m, err := Parse([]byte(`{"scripts":{"build":"tsc && node dist/index.js","lint":"eslint . > lint.txt < /dev/null"},"nested":[{"a":"x&y"}]}`))
	require.NoError(t, err)
	require.NoError(t, m.ApplyVariant(variant.PostgreSQL))

	out, err := m.Encode()
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, `"build": "tsc && node dist/index.js"`)
	assert.Contains(t, s, `"lint": "eslint . > lint.txt < /dev/null"`)
	assert.Contains(t, s, `"a": "x&y"`)
	assert.NotContains(t, s, `\u0026`)
	assert.NotContains(t, s, `\u003c`)
	assert.NotContains(t, s, `\u003e`)
	assert.True(t, json.Valid(out))
}

func TestGenerate(t *testing.T) {
	src := afero.NewMemMapFs()
	require.NoError(t, src.MkdirAll("/tmpl", 0o755))
	require.NoError(t, afero.WriteFile(src, "/tmpl/package.json", []byte(templateManifest), 0o644))

	dst := afero.NewMemMapFs()
	require.NoError(t, dst.MkdirAll("/work/app", 0o755))

	err := Generate(src, "/tmpl/package.json", dst, "/work/app/package.json", "app", variant.PostgreSQL)
	require.NoError(t, err)

	data, err := afero.ReadFile(dst, "/work/app/package.json")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "}\n"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "app", decoded["name"])
	assert.Equal(t, DefaultDescription, decoded["description"])
	assert.Equal(t, "MIT", decoded["license"])

	deps := decoded["dependencies"].(map[string]any)
	assert.Contains(t, deps, "@prisma/client")
	assert.NotContains(t, deps, "mongoose")

	// no temp files left behind
	entries, err := afero.ReadDir(dst, "/work/app")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGenerate_MissingTemplateManifest(t *testing.T) {
	err := Generate(afero.NewMemMapFs(), "/tmpl/package.json", afero.NewMemMapFs(), "/out/package.json", "app", variant.MongoDB)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read manifest")
}

func TestGenerate_WriteFailure(t *testing.T) {
	src := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(src, "/package.json", []byte(templateManifest), 0o644))

	dst := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := Generate(src, "/package.json", dst, "/out/package.json", "app", variant.MongoDB)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write manifest")
}

func TestWriteFileAtomic_ReplacesExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/d", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/d/f.json", []byte("old"), 0o644))

	require.NoError(t, WriteFileAtomic(fs, "/d/f.json", []byte("new"), 0o644))

	data, err := afero.ReadFile(fs, "/d/f.json")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}
