package pokemons

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `id,name,type1,type2,total,hp,attack,defense,spAttack,spDefense,speed,generation,legendary,image,ytbUrl
1,Bulbasaur,Grass,Poison,318,45,49,49,65,65,45,1,False,,https://youtu.be/bulba
6,"Charizard",Fire,Flying,534,78,84,78,109,85,100,1,false,img/6.png,
150,Mewtwo,Psychic,,680,106,110,90,154,90,130,1,TRUE,,
abc,Broken,Normal,,0,0,0,0,0,0,0,1,false,,
7,Short,Water
`

func TestParseCSV(t *testing.T) {
	items, skipped, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, 2, skipped, "bad id and short row are skipped")

	bulba := items[0]
	assert.Equal(t, 1, bulba.ID)
	assert.Equal(t, "Bulbasaur", bulba.Name)
	require.NotNil(t, bulba.Type2)
	assert.Equal(t, "Poison", *bulba.Type2)
	assert.Equal(t, 65, bulba.SpAttack)
	assert.False(t, bulba.Legendary)
	assert.Nil(t, bulba.Image)
	require.NotNil(t, bulba.YtbURL)
	assert.Equal(t, "https://youtu.be/bulba", *bulba.YtbURL)

	zard := items[1]
	assert.Equal(t, "Charizard", zard.Name)
	require.NotNil(t, zard.Image)
	assert.Nil(t, zard.YtbURL)

	mewtwo := items[2]
	assert.Nil(t, mewtwo.Type2)
	assert.True(t, mewtwo.Legendary)
	assert.Equal(t, 130, mewtwo.Speed)
}

func TestParseCSV_HeaderByName(t *testing.T) {
	csv := "Name,ID,Type1,Speed\nPikachu,25,Electric,90\n"
	items, skipped, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Zero(t, skipped)
	assert.Equal(t, 25, items[0].ID)
	assert.Equal(t, 90, items[0].Speed)
	assert.Equal(t, 1, items[0].Generation, "generation defaults to 1")
}

func TestParseCSV_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing required column", "id,type1\n1,Grass\n"},
		{"malformed quoting", "id,name,type1\n1,\"Bulba,Grass\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrInvalidCSV)
		})
	}
}
