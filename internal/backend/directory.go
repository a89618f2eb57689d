package backend

import (
	"context"
	"sort"

	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/repository"
)

const searchLimit = 100

// Search ranks the directory against the filter, best match first.
func (s *Service) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.SearchResult, error) {
	people, err := s.Candidates(ctx, filter)
	if err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(people))
	for _, p := range people {
		rel := domain.Score(p, filter)
		results = append(results, domain.SearchResult{
			ID:             p.ID,
			Person:         p,
			RelevanceScore: rel.Score,
			MatchedFields:  rel.MatchedFields,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	return results, nil
}

// Candidates returns the people matching the filter without scoring them.
func (s *Service) Candidates(ctx context.Context, filter domain.SearchFilter) ([]domain.Person, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	people, err := s.people.List(ctx, repository.PersonQuery{
		Company:  filter.Company,
		Position: filter.Position,
		Location: filter.Location,
		Limit:    searchLimit,
	})
	if err != nil {
		return nil, err
	}
	out := people[:0]
	for _, p := range people {
		if domain.Matches(p, filter) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) Person(ctx context.Context, id string) (*domain.Person, error) {
	return s.people.Get(ctx, id)
}

// SeedPeople upserts the given people into the directory.
func (s *Service) SeedPeople(ctx context.Context, people []domain.Person) error {
	for i := range people {
		if err := s.people.Upsert(ctx, &people[i]); err != nil {
			return err
		}
	}
	return nil
}
