package source_test

import (
	"context"
	"errors"
	"testing"

	"bepinstall/internal/domain"
	"bepinstall/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockResolver struct {
	id string
}

func (m *mockResolver) ID() string   { return m.id }
func (m *mockResolver) Name() string { return "Mock" }
func (m *mockResolver) Resolve(context.Context, domain.ModHint) (*domain.ModEntry, error) {
	return nil, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := source.NewRegistry("thunderstore")
	reg.Register(&mockResolver{id: "thunderstore"})
	reg.Register(&mockResolver{id: "nexusmods"})

	r, err := reg.Get("nexusmods")
	require.NoError(t, err)
	assert.Equal(t, "nexusmods", r.ID())

	// Empty ID selects the fallback
	r, err = reg.Get("")
	require.NoError(t, err)
	assert.Equal(t, "thunderstore", r.ID())
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg := source.NewRegistry("thunderstore")

	_, err := reg.Get("curseforge")
	assert.True(t, errors.Is(err, domain.ErrUnknownSource))

	_, err = reg.Get("")
	assert.True(t, errors.Is(err, domain.ErrUnknownSource))
}

func TestRegistry_List(t *testing.T) {
	reg := source.NewRegistry("")
	reg.Register(&mockResolver{id: "b"})
	reg.Register(&mockResolver{id: "a"})

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID())
	assert.Equal(t, "b", list[1].ID())
}

func strPtr(s string) *string { return &s }

func TestHintMapping(t *testing.T) {
	tests := []struct {
		name string
		hint domain.ModHint
		want domain.Mapping
	}{
		{
			name: "defaults",
			hint: domain.ModHint{},
			want: domain.Mapping{From: "*", To: "BepInEx/plugins/Author-Mod"},
		},
		{
			name: "explicit",
			hint: domain.ModHint{From: strPtr("BepInExPack_Valheim"), To: strPtr("")},
			want: domain.Mapping{From: "BepInExPack_Valheim", To: ""},
		},
		{
			name: "empty from is wildcard",
			hint: domain.ModHint{From: strPtr(""), To: strPtr("BepInEx/plugins")},
			want: domain.Mapping{From: "*", To: "BepInEx/plugins"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, source.HintMapping(tt.hint, "Author-Mod"))
		})
	}
}
