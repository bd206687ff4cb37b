package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spec-kit/redlink/internal/domain"
)

// DonorRepository holds the donor sessions of the running process.
type DonorRepository interface {
	Create(ctx context.Context, donor domain.Donor) error
	GetByID(ctx context.Context, id string) (domain.Donor, error)
	GetByName(ctx context.Context, name string) (domain.Donor, error)
	// Update applies fn to a copy of the donor and stores the copy only when fn succeeds.
	Update(ctx context.Context, id string, fn func(*domain.Donor) error) (domain.Donor, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Donor, error)
}

type donorRepository struct {
	mu     sync.RWMutex
	donors map[string]domain.Donor
}

// NewDonorRepository instantiates an empty in-memory repository.
func NewDonorRepository() DonorRepository {
	return &donorRepository{donors: make(map[string]domain.Donor)}
}

func (r *donorRepository) Create(_ context.Context, donor domain.Donor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.donors[donor.ID]; exists {
		return fmt.Errorf("donor %s already exists", donor.ID)
	}
	r.donors[donor.ID] = donor
	return nil
}

func (r *donorRepository) GetByID(_ context.Context, id string) (domain.Donor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	donor, ok := r.donors[id]
	if !ok {
		return domain.Donor{}, domain.ErrDonorNotFound
	}
	return donor, nil
}

func (r *donorRepository) GetByName(_ context.Context, name string) (domain.Donor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := normalizeName(name)
	for _, donor := range r.donors {
		if normalizeName(donor.Name) == key {
			return donor, nil
		}
	}
	return domain.Donor{}, domain.ErrDonorNotFound
}

func (r *donorRepository) Update(_ context.Context, id string, fn func(*domain.Donor) error) (domain.Donor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.donors[id]
	if !ok {
		return domain.Donor{}, domain.ErrDonorNotFound
	}
	next := current
	if err := fn(&next); err != nil {
		return current, err
	}
	r.donors[id] = next
	return next, nil
}

func (r *donorRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.donors[id]; !ok {
		return domain.ErrDonorNotFound
	}
	delete(r.donors, id)
	return nil
}

// List returns donors ordered by creation time.
func (r *donorRepository) List(_ context.Context) ([]domain.Donor, error) {
	r.mu.RLock()
	out := make([]domain.Donor, 0, len(r.donors))
	for _, donor := range r.donors {
		out = append(out, donor)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
