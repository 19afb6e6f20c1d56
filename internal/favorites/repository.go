package favorites

import (
	"context"
	"fmt"

	"github.com/richxcame/pokedex/internal/pokemons"
	"github.com/richxcame/pokedex/pkg/database"
)

const (
	uniquePairConstraint = "favorites_user_pokemon_key"
	pokemonFKConstraint  = "favorites_pokemon_id_fkey"
	userFKConstraint     = "favorites_user_id_fkey"
)

const joinedPokemonColumns = `
	p.id, p.name, p.type1, p.type2, p.total, p.hp, p.attack, p.defense,
	p.sp_attack, p.sp_defense, p.speed, p.generation, p.legendary, p.image, p.ytb_url`

// Repository handles favorites data access
type Repository struct {
	db database.Querier
}

// NewRepository creates a new favorites repository
func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// CreateFavorite inserts the (user, pokemon) pair. Uniqueness is enforced by
// the favorites_user_pokemon_key constraint, so concurrent inserts of the
// same pair yield exactly one row.
func (r *Repository) CreateFavorite(ctx context.Context, userID int64, pokemonID int) (*Favorite, error) {
	query := fmt.Sprintf(`
		WITH inserted AS (
			INSERT INTO favorites (user_id, pokemon_id)
			VALUES ($1, $2)
			RETURNING id, user_id, pokemon_id, created_at
		)
		SELECT i.id, i.user_id, i.pokemon_id, i.created_at, %s
		FROM inserted i
		JOIN pokemons p ON p.id = i.pokemon_id
	`, joinedPokemonColumns)

	fav := &Favorite{}
	row := r.db.QueryRow(ctx, query, userID, pokemonID)
	p, err := pokemons.ScanPokemon(func(dest ...interface{}) error {
		return row.Scan(append([]interface{}{&fav.ID, &fav.UserID, &fav.PokemonID, &fav.CreatedAt}, dest...)...)
	})
	if err != nil {
		switch {
		case database.IsUniqueViolation(err, uniquePairConstraint):
			return nil, ErrFavoriteExists
		case database.IsForeignKeyViolation(err, pokemonFKConstraint):
			return nil, pokemons.ErrPokemonNotFound
		case database.IsForeignKeyViolation(err, userFKConstraint):
			return nil, ErrUserGone
		}
		return nil, fmt.Errorf("failed to create favorite: %w", err)
	}

	view := pokemons.ToView(p)
	fav.Pokemon = &view
	return fav, nil
}

// DeleteFavorite removes the pair by its owner, never by surrogate id
func (r *Repository) DeleteFavorite(ctx context.Context, userID int64, pokemonID int) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND pokemon_id = $2`

	tag, err := r.db.Exec(ctx, query, userID, pokemonID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// ListByUser returns the user's favorited pokemon with their current catalog
// attributes, oldest favorite first
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]*pokemons.Pokemon, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM favorites f
		JOIN pokemons p ON p.id = f.pokemon_id
		WHERE f.user_id = $1
		ORDER BY f.created_at ASC, f.id ASC
	`, joinedPokemonColumns)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	items := make([]*pokemons.Pokemon, 0)
	for rows.Next() {
		p, err := pokemons.ScanPokemon(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}

	return items, nil
}
