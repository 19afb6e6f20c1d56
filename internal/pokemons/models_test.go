package pokemons

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestToView(t *testing.T) {
	t.Run("defaults image and omits empty ytUrl", func(t *testing.T) {
		v := ToView(&Pokemon{ID: 25, Name: "Pikachu", Type1: "Electric", SpAttack: 50, SpDefense: 50})

		b, err := json.Marshal(v)
		require.NoError(t, err)

		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(b, &m))
		assert.Equal(t, "assets/images/pokemon/25.png", m["image"])
		assert.Nil(t, m["type2"])
		assert.Contains(t, m, "type2", "type2 is always present")
		assert.NotContains(t, m, "ytUrl")
		assert.Equal(t, float64(50), m["spAtk"])
		assert.Equal(t, float64(50), m["spDef"])
	})

	t.Run("keeps explicit image and video", func(t *testing.T) {
		v := ToView(&Pokemon{ID: 6, Image: strPtr("img/6.png"), YtbURL: strPtr("https://youtu.be/x"), Type2: strPtr("Flying")})
		assert.Equal(t, "img/6.png", v.Image)
		assert.Equal(t, "https://youtu.be/x", v.YtURL)
		assert.Equal(t, "Flying", *v.Type2)
	})

	t.Run("empty image string falls back", func(t *testing.T) {
		v := ToView(&Pokemon{ID: 7, Image: strPtr("")})
		assert.Equal(t, DefaultImage(7), v.Image)
	})
}

func TestToViews_NeverNil(t *testing.T) {
	assert.NotNil(t, ToViews(nil))
	assert.Len(t, ToViews([]*Pokemon{{ID: 1}, {ID: 2}}), 2)
}
