package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/repository"
)

type personRepository struct {
	mu     sync.RWMutex
	people map[string]domain.Person
}

// NewPersonRepository returns an in-memory PersonRepository holding the given people.
func NewPersonRepository(seed ...domain.Person) repository.PersonRepository {
	r := &personRepository{people: make(map[string]domain.Person, len(seed))}
	for _, p := range seed {
		p := p
		_ = r.Upsert(context.Background(), &p)
	}
	return r
}

func (r *personRepository) Get(_ context.Context, id string) (*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.people[id]
	if !ok {
		return nil, domain.ErrPersonNotFound
	}
	cp := clonePerson(p)
	return &cp, nil
}

func (r *personRepository) List(_ context.Context, q repository.PersonQuery) ([]domain.Person, error) {
	r.mu.RLock()
	matched := make([]domain.Person, 0, len(r.people))
	for _, p := range r.people {
		if containsFold(p.Company, q.Company) && containsFold(p.Position, q.Position) && containsFold(p.Location, q.Location) {
			matched = append(matched, clonePerson(p))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].LastUpdated.Equal(matched[j].LastUpdated) {
			return matched[i].LastUpdated.After(matched[j].LastUpdated)
		}
		return matched[i].ID < matched[j].ID
	})
	return page(matched, q.Offset, q.Limit), nil
}

func (r *personRepository) Upsert(_ context.Context, p *domain.Person) error {
	if p == nil {
		return domain.ErrInvalidPayload
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.LastUpdated.IsZero() {
		p.LastUpdated = time.Now().UTC()
	}
	p.EnsureCollections()

	r.mu.Lock()
	r.people[p.ID] = clonePerson(*p)
	r.mu.Unlock()
	return nil
}

func containsFold(have, want string) bool {
	want = strings.TrimSpace(want)
	return want == "" || strings.Contains(strings.ToLower(have), strings.ToLower(want))
}

func page[T any](items []T, offset, limit int) []T {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset >= len(items) {
		return []T{}
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func clonePerson(p domain.Person) domain.Person {
	p.Skills = append([]string{}, p.Skills...)
	p.Experience = append([]domain.Experience{}, p.Experience...)
	p.Education = append([]domain.Education{}, p.Education...)
	p.SocialProfiles = append([]domain.SocialProfile{}, p.SocialProfiles...)
	return p
}
