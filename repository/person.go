package repository

import (
	"context"

	"github.com/fastygo/peoplesearch/domain"
)

// PersonQuery narrows a directory listing. Text criteria are case-insensitive substrings;
// the final relevance filtering happens in the service.
type PersonQuery struct {
	Company  string
	Position string
	Location string
	Limit    int
	Offset   int
}

type PersonRepository interface {
	Get(ctx context.Context, id string) (*domain.Person, error)
	List(ctx context.Context, query PersonQuery) ([]domain.Person, error)
	Upsert(ctx context.Context, person *domain.Person) error
}
