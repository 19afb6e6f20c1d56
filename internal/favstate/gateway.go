package favstate

import (
	"context"
	"errors"
	"net/http"

	"github.com/richxcame/pokedex/pkg/httpclient"
)

// Gateway is the server side of the favorites protocol as seen by the client
type Gateway interface {
	AddFavorite(ctx context.Context, itemID int) error
	RemoveFavorite(ctx context.Context, itemID int) error
	FavoriteIDs(ctx context.Context) ([]int, error)
}

// Reason classifies why a toggle failed
type Reason int

const (
	ReasonNone Reason = iota
	ReasonConflict
	ReasonNotFound
	ReasonGeneric
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonConflict:
		return "conflict"
	case ReasonNotFound:
		return "not_found"
	default:
		return "generic"
	}
}

// Message is the user-facing text for a failed toggle
func (r Reason) Message() string {
	switch r {
	case ReasonConflict:
		return "Pokemon is already in favorites"
	case ReasonNotFound:
		return "Favorite not found"
	default:
		return "Failed to update favorites"
	}
}

// Gateways may return these directly instead of an httpclient.HTTPError
var (
	ErrConflict = errors.New("favorite already exists")
	ErrNotFound = errors.New("favorite not found")
)

// Classify maps a gateway error to a failure reason
func Classify(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, ErrConflict):
		return ReasonConflict
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	}

	switch httpclient.StatusCode(err) {
	case http.StatusConflict:
		return ReasonConflict
	case http.StatusNotFound:
		return ReasonNotFound
	}
	return ReasonGeneric
}
