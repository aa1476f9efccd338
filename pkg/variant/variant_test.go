package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Variant
		wantErr bool
	}{
		{in: "mongodb", want: MongoDB},
		{in: "Mongo", want: MongoDB},
		{in: "postgresql", want: PostgreSQL},
		{in: " postgres ", want: PostgreSQL},
		{in: "PG", want: PostgreSQL},
		{in: "mysql", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown database")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAll_MenuOrder(t *testing.T) {
	all := All()
	require.Len(t, all, 2)
	assert.Equal(t, MongoDB, all[0].Variant)
	assert.Equal(t, PostgreSQL, all[1].Variant)

	// callers get a copy
	all[0].Label = "changed"
	assert.Equal(t, "MongoDB", All()[0].Label)
}

func TestForeign_Disjoint(t *testing.T) {
	deps, devDeps := PostgreSQL.Foreign()
	assert.Equal(t, []string{"mongoose"}, deps)
	assert.Empty(t, devDeps)

	deps, devDeps = MongoDB.Foreign()
	assert.Equal(t, []string{"@prisma/client"}, deps)
	assert.Equal(t, []string{"prisma"}, devDeps)
}

func TestSpec_SchemaCommandOnlyForRelational(t *testing.T) {
	assert.Empty(t, MongoDB.Spec().SchemaCommand)
	assert.Equal(t, []string{"npx", "prisma", "init"}, PostgreSQL.Spec().SchemaCommand)
}

func TestLookup_Unknown(t *testing.T) {
	_, ok := Lookup(Variant("sqlite"))
	assert.False(t, ok)
	assert.Empty(t, Variant("sqlite").Spec().Label)
}
