package pokemons

import (
	"errors"
	"fmt"
)

// ErrPokemonNotFound is returned when no catalog row has the requested id
var ErrPokemonNotFound = errors.New("pokemon not found")

// Pokemon is a catalog row
type Pokemon struct {
	ID         int
	Name       string
	Type1      string
	Type2      *string
	Total      int
	HP         int
	Attack     int
	Defense    int
	SpAttack   int
	SpDefense  int
	Speed      int
	Generation int
	Legendary  bool
	Image      *string
	YtbURL     *string
}

// PokemonView is the wire shape of a catalog item
type PokemonView struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Type1      string  `json:"type1"`
	Type2      *string `json:"type2"`
	Total      int     `json:"total"`
	HP         int     `json:"hp"`
	Attack     int     `json:"attack"`
	Defense    int     `json:"defense"`
	SpAtk      int     `json:"spAtk"`
	SpDef      int     `json:"spDef"`
	Speed      int     `json:"speed"`
	Generation int     `json:"generation"`
	Legendary  bool    `json:"legendary"`
	Image      string  `json:"image"`
	YtURL      string  `json:"ytUrl,omitempty"`
}

// DefaultImage is the asset path used when a row has no image
func DefaultImage(id int) string {
	return fmt.Sprintf("assets/images/pokemon/%d.png", id)
}

// ToView maps a catalog row to its wire shape
func ToView(p *Pokemon) PokemonView {
	v := PokemonView{
		ID:         p.ID,
		Name:       p.Name,
		Type1:      p.Type1,
		Type2:      p.Type2,
		Total:      p.Total,
		HP:         p.HP,
		Attack:     p.Attack,
		Defense:    p.Defense,
		SpAtk:      p.SpAttack,
		SpDef:      p.SpDefense,
		Speed:      p.Speed,
		Generation: p.Generation,
		Legendary:  p.Legendary,
		Image:      DefaultImage(p.ID),
	}
	if p.Image != nil && *p.Image != "" {
		v.Image = *p.Image
	}
	if p.YtbURL != nil {
		v.YtURL = *p.YtbURL
	}
	return v
}

// ToViews maps rows, never returning nil
func ToViews(items []*Pokemon) []PokemonView {
	views := make([]PokemonView, 0, len(items))
	for _, p := range items {
		views = append(views, ToView(p))
	}
	return views
}

// Filters narrows a catalog listing
type Filters struct {
	Name      string
	Type      string
	Legendary *bool
	MinSpeed  *int
	MaxSpeed  *int
}

// ImportResult summarizes a CSV import
type ImportResult struct {
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Message  string `json:"message"`
}
