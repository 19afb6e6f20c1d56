package favorites

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/richxcame/pokedex/internal/pokemons"
	"github.com/richxcame/pokedex/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pokemonRow(id int, name string) []any {
	return []any{id, name, "Water", nil, 314, 44, 48, 65, 50, 64, 43, 1, false, nil, nil}
}

func TestRepository_CreateFavorite(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	t.Run("returns favorite joined with pokemon", func(t *testing.T) {
		db := new(mocks.MockQuerier)
		values := append([]any{int64(11), int64(1), 7, created}, pokemonRow(7, "Squirtle")...)
		db.On("QueryRow", ctx, mock.MatchedBy(func(q string) bool {
			return strings.Contains(q, "INSERT INTO favorites") && strings.Contains(q, "RETURNING")
		}), []any{int64(1), 7}).Return(mocks.NewMockRow(values...))

		fav, err := NewRepository(db).CreateFavorite(ctx, 1, 7)

		require.NoError(t, err)
		assert.Equal(t, int64(11), fav.ID)
		assert.Equal(t, int64(1), fav.UserID)
		assert.Equal(t, 7, fav.PokemonID)
		assert.Equal(t, created, fav.CreatedAt)
		require.NotNil(t, fav.Pokemon)
		assert.Equal(t, "Squirtle", fav.Pokemon.Name)
		assert.Equal(t, "assets/images/pokemon/7.png", fav.Pokemon.Image)
		db.AssertExpectations(t)
	})

	tests := []struct {
		name    string
		scanErr error
		wantIs  error
		wantMsg string
	}{
		{
			name:    "duplicate pair",
			scanErr: &pgconn.PgError{Code: "23505", ConstraintName: "favorites_user_pokemon_key"},
			wantIs:  ErrFavoriteExists,
		},
		{
			name:    "unknown pokemon",
			scanErr: &pgconn.PgError{Code: "23503", ConstraintName: "favorites_pokemon_id_fkey"},
			wantIs:  pokemons.ErrPokemonNotFound,
		},
		{
			name:    "unknown user",
			scanErr: &pgconn.PgError{Code: "23503", ConstraintName: "favorites_user_id_fkey"},
			wantIs:  ErrUserGone,
		},
		{
			name:    "other foreign key",
			scanErr: &pgconn.PgError{Code: "23503", ConstraintName: "favorites_other_fkey"},
			wantMsg: "failed to create favorite",
		},
		{
			name:    "database error",
			scanErr: errors.New("connection reset"),
			wantMsg: "failed to create favorite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := new(mocks.MockQuerier)
			db.On("QueryRow", ctx, mock.Anything, mock.Anything).Return(mocks.NewMockRowError(tt.scanErr))

			fav, err := NewRepository(db).CreateFavorite(ctx, 1, 7)

			assert.Nil(t, fav)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			} else {
				assert.ErrorContains(t, err, tt.wantMsg)
				assert.NotErrorIs(t, err, ErrFavoriteExists)
				assert.NotErrorIs(t, err, pokemons.ErrPokemonNotFound)
				assert.NotErrorIs(t, err, ErrUserGone)
			}
		})
	}
}

func TestRepository_DeleteFavorite(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes by owning pair", func(t *testing.T) {
		db := new(mocks.MockQuerier)
		db.On("Exec", ctx, mock.MatchedBy(func(q string) bool {
			return strings.Contains(q, "WHERE user_id = $1 AND pokemon_id = $2")
		}), []any{int64(1), 7}).Return(pgconn.NewCommandTag("DELETE 1"), nil)

		require.NoError(t, NewRepository(db).DeleteFavorite(ctx, 1, 7))
		db.AssertExpectations(t)
	})

	t.Run("no rows is not found", func(t *testing.T) {
		db := new(mocks.MockQuerier)
		db.On("Exec", ctx, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("DELETE 0"), nil)

		assert.ErrorIs(t, NewRepository(db).DeleteFavorite(ctx, 1, 7), ErrFavoriteNotFound)
	})

	t.Run("database error", func(t *testing.T) {
		db := new(mocks.MockQuerier)
		db.On("Exec", ctx, mock.Anything, mock.Anything).Return(pgconn.CommandTag{}, errors.New("boom"))

		err := NewRepository(db).DeleteFavorite(ctx, 1, 7)
		assert.ErrorContains(t, err, "failed to delete favorite")
		assert.NotErrorIs(t, err, ErrFavoriteNotFound)
	})
}

func TestRepository_ListByUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns joined rows", func(t *testing.T) {
		db := new(mocks.MockQuerier)
		rows := mocks.NewMockRows([][]any{pokemonRow(7, "Squirtle"), pokemonRow(8, "Wartortle")})
		db.On("Query", ctx, mock.MatchedBy(func(q string) bool {
			return strings.Contains(q, "JOIN pokemons p") && strings.Contains(q, "ORDER BY f.created_at")
		}), []any{int64(2)}).Return(rows, nil)

		items, err := NewRepository(db).ListByUser(ctx, 2)

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, 7, items[0].ID)
		assert.Equal(t, "Wartortle", items[1].Name)
		assert.True(t, rows.Closed())
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		db := new(mocks.MockQuerier)
		db.On("Query", ctx, mock.Anything, mock.Anything).Return(mocks.NewMockRows(nil), nil)

		items, err := NewRepository(db).ListByUser(ctx, 2)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("query error", func(t *testing.T) {
		db := new(mocks.MockQuerier)
		db.On("Query", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

		_, err := NewRepository(db).ListByUser(ctx, 2)
		assert.ErrorContains(t, err, "failed to list favorites")
	})

	t.Run("scan error", func(t *testing.T) {
		db := new(mocks.MockQuerier)
		rows := mocks.NewMockRows([][]any{pokemonRow(7, "Squirtle")}).WithScanError(errors.New("bad column"))
		db.On("Query", ctx, mock.Anything, mock.Anything).Return(rows, nil)

		_, err := NewRepository(db).ListByUser(ctx, 2)
		assert.ErrorContains(t, err, "failed to scan favorite")
		assert.True(t, rows.Closed())
	})

	t.Run("iteration error", func(t *testing.T) {
		db := new(mocks.MockQuerier)
		rows := mocks.NewMockRows(nil).WithIterError(errors.New("conn lost"))
		db.On("Query", ctx, mock.Anything, mock.Anything).Return(rows, nil)

		_, err := NewRepository(db).ListByUser(ctx, 2)
		assert.ErrorContains(t, err, "failed to iterate favorites")
	})
}
