package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/splitter/types"
)

func TestStatic_GetProfile(t *testing.T) {
	t.Run("returns known profile", func(t *testing.T) {
		src := NewStatic([]types.Profile{
			{UserID: "u1", Attributes: map[string]types.Value{"plan": types.String("premium")}},
			{UserID: "u2", Attributes: map[string]types.Value{"plan": types.String("free")}},
		})

		p, ok, err := src.GetProfile(context.Background(), "u1")

		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "u1", p.UserID)
		plan, _ := p.Attributes["plan"].AsString()
		require.Equal(t, "premium", plan)
		require.Equal(t, 2, src.Len())
	})

	t.Run("unknown user", func(t *testing.T) {
		src := NewStatic(nil)

		_, ok, err := src.GetProfile(context.Background(), "ghost")

		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("does not expose internal state", func(t *testing.T) {
		attrs := map[string]types.Value{"sessions": types.Int(3)}
		src := NewStatic([]types.Profile{{UserID: "u1", Attributes: attrs}})

		// Modify the caller's map and a returned copy
		attrs["sessions"] = types.Int(99)
		p, _, _ := src.GetProfile(context.Background(), "u1")
		p.Attributes["sessions"] = types.Int(42)

		// Original should be unchanged
		p2, _, _ := src.GetProfile(context.Background(), "u1")
		n, _ := p2.Attributes["sessions"].AsInt()
		require.Equal(t, int64(3), n)
	})
}

func TestStatic_Update(t *testing.T) {
	src := NewStatic([]types.Profile{
		{UserID: "u1", Attributes: map[string]types.Value{"plan": types.String("free")}},
	})

	src.Update(types.Profile{UserID: "u1", Attributes: map[string]types.Value{"plan": types.String("premium")}})
	src.Update(types.Profile{UserID: "u2"})

	p, ok, err := src.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, ok)
	plan, _ := p.Attributes["plan"].AsString()
	require.Equal(t, "premium", plan)
	require.Equal(t, 2, src.Len())
}

func TestParseProfiles(t *testing.T) {
	data := []byte(`
- userId: u1
  attributes:
    plan: premium
    sessions: 12
    ratio: 0.5
    beta: true
    tags: [mobile, eu]
- userId: u2
  attributes: {}
`)

	profiles, err := ParseProfiles(data)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	attrs := profiles[0].Attributes
	require.Equal(t, types.KindString, attrs["plan"].Kind())
	require.Equal(t, types.KindInt, attrs["sessions"].Kind())
	require.Equal(t, types.KindFloat, attrs["ratio"].Kind())
	require.Equal(t, types.KindBool, attrs["beta"].Kind())
	tags, ok := attrs["tags"].AsList()
	require.True(t, ok)
	require.Len(t, tags, 2)

	_, err = ParseProfiles([]byte(`- attributes: {plan: free}`))
	require.ErrorContains(t, err, "userId is required")

	_, err = ParseProfiles([]byte(`{not a list`))
	require.Error(t, err)
}

func TestLoadStatic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- userId: u1\n  attributes:\n    country: DE\n"), 0o600))

	src, err := LoadStatic(path)
	require.NoError(t, err)
	p, ok, err := src.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, ok)
	country, _ := p.Attributes["country"].AsString()
	require.Equal(t, "DE", country)

	_, err = LoadStatic(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
