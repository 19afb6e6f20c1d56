package pokemons

import (
	"context"
	"fmt"
	"strings"

	"github.com/richxcame/pokedex/pkg/database"
)

const pokemonColumns = `
	id, name, type1, type2, total, hp, attack, defense,
	sp_attack, sp_defense, speed, generation, legendary, image, ytb_url`

// ScanPokemon scans pokemonColumns into a Pokemon
func ScanPokemon(scan func(dest ...interface{}) error) (*Pokemon, error) {
	p := &Pokemon{}
	err := scan(
		&p.ID, &p.Name, &p.Type1, &p.Type2, &p.Total, &p.HP, &p.Attack, &p.Defense,
		&p.SpAttack, &p.SpDefense, &p.Speed, &p.Generation, &p.Legendary, &p.Image, &p.YtbURL,
	)
	return p, err
}

// Repository handles catalog data access
type Repository struct {
	db database.Querier
}

// NewRepository creates a new catalog repository
func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// likePattern builds a case-insensitive substring pattern with LIKE wildcards escaped
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// buildFilters constructs the WHERE clause and args for a listing
func buildFilters(filters *Filters) (string, []interface{}, int) {
	where := []string{"TRUE"}
	var args []interface{}
	argIdx := 1

	if filters != nil {
		if filters.Name != "" {
			where = append(where, fmt.Sprintf("name ILIKE $%d", argIdx))
			args = append(args, likePattern(filters.Name))
			argIdx++
		}
		if filters.Type != "" {
			where = append(where, fmt.Sprintf("(type1 ILIKE $%d OR type2 ILIKE $%d)", argIdx, argIdx))
			args = append(args, likePattern(filters.Type))
			argIdx++
		}
		if filters.Legendary != nil {
			where = append(where, fmt.Sprintf("legendary = $%d", argIdx))
			args = append(args, *filters.Legendary)
			argIdx++
		}
		if filters.MinSpeed != nil {
			where = append(where, fmt.Sprintf("speed >= $%d", argIdx))
			args = append(args, *filters.MinSpeed)
			argIdx++
		}
		if filters.MaxSpeed != nil {
			where = append(where, fmt.Sprintf("speed <= $%d", argIdx))
			args = append(args, *filters.MaxSpeed)
			argIdx++
		}
	}

	return strings.Join(where, " AND "), args, argIdx
}

// List returns one page of the filtered catalog ordered by id, plus the filtered total
func (r *Repository) List(ctx context.Context, filters *Filters, limit, offset int) ([]*Pokemon, int64, error) {
	whereClause, args, argIdx := buildFilters(filters)

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM pokemons WHERE %s`, whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count pokemons: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM pokemons WHERE %s ORDER BY id ASC LIMIT $%d OFFSET $%d`,
		pokemonColumns, whereClause, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pokemons: %w", err)
	}
	defer rows.Close()

	var items []*Pokemon
	for rows.Next() {
		p, err := ScanPokemon(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan pokemon: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate pokemons: %w", err)
	}

	return items, total, nil
}

// GetByID returns a single catalog row
func (r *Repository) GetByID(ctx context.Context, id int) (*Pokemon, error) {
	query := fmt.Sprintf(`SELECT %s FROM pokemons WHERE id = $1`, pokemonColumns)

	p, err := ScanPokemon(r.db.QueryRow(ctx, query, id).Scan)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrPokemonNotFound
		}
		return nil, fmt.Errorf("failed to get pokemon: %w", err)
	}
	return p, nil
}

// Upsert inserts a row or replaces the row with the same id
func (r *Repository) Upsert(ctx context.Context, p *Pokemon) error {
	query := `
		INSERT INTO pokemons (id, name, type1, type2, total, hp, attack, defense,
			sp_attack, sp_defense, speed, generation, legendary, image, ytb_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type1 = EXCLUDED.type1,
			type2 = EXCLUDED.type2,
			total = EXCLUDED.total,
			hp = EXCLUDED.hp,
			attack = EXCLUDED.attack,
			defense = EXCLUDED.defense,
			sp_attack = EXCLUDED.sp_attack,
			sp_defense = EXCLUDED.sp_defense,
			speed = EXCLUDED.speed,
			generation = EXCLUDED.generation,
			legendary = EXCLUDED.legendary,
			image = EXCLUDED.image,
			ytb_url = EXCLUDED.ytb_url
	`

	_, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Type1, p.Type2, p.Total, p.HP, p.Attack, p.Defense,
		p.SpAttack, p.SpDefense, p.Speed, p.Generation, p.Legendary, p.Image, p.YtbURL,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert pokemon %d: %w", p.ID, err)
	}
	return nil
}

// UpdateImage points a catalog row at a new image URL
func (r *Repository) UpdateImage(ctx context.Context, id int, image string) error {
	tag, err := r.db.Exec(ctx, `UPDATE pokemons SET image = $2 WHERE id = $1`, id, image)
	if err != nil {
		return fmt.Errorf("failed to update pokemon image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPokemonNotFound
	}
	return nil
}
