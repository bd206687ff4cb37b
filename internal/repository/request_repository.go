package repository

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spec-kit/redlink/internal/domain"
)

// RequestRepository stores emergency requests newest first. Requests are never deleted.
type RequestRepository interface {
	Create(ctx context.Context, req domain.Request) error
	GetByID(ctx context.Context, id string) (domain.Request, error)
	Resolve(ctx context.Context, id string, status domain.RequestStatus, donorID string, at time.Time) (domain.Request, error)
	List(ctx context.Context) ([]domain.Request, error)
	ListByBloodGroup(ctx context.Context, group domain.BloodGroup) ([]domain.Request, error)
}

// requestRepository keeps an immutable snapshot of the list. Writers build a new
// slice and swap it in, so readers never observe a half-updated record.
type requestRepository struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[[]domain.Request]
}

// NewRequestRepository instantiates an empty in-memory repository.
func NewRequestRepository() RequestRepository {
	r := &requestRepository{}
	empty := []domain.Request{}
	r.snapshot.Store(&empty)
	return r
}

func (r *requestRepository) load() []domain.Request {
	return *r.snapshot.Load()
}

func (r *requestRepository) Create(_ context.Context, req domain.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.load()
	next := make([]domain.Request, 0, len(current)+1)
	next = append(next, req)
	next = append(next, current...)
	r.snapshot.Store(&next)
	return nil
}

func (r *requestRepository) GetByID(_ context.Context, id string) (domain.Request, error) {
	for _, req := range r.load() {
		if req.ID == id {
			return req, nil
		}
	}
	return domain.Request{}, domain.ErrRequestNotFound
}

// Resolve moves a pending request to status in one compare-and-set step.
func (r *requestRepository) Resolve(_ context.Context, id string, status domain.RequestStatus, donorID string, at time.Time) (domain.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.load()
	idx := slices.IndexFunc(current, func(req domain.Request) bool { return req.ID == id })
	if idx < 0 {
		return domain.Request{}, domain.ErrRequestNotFound
	}
	if !current[idx].Pending() {
		return domain.Request{}, domain.ErrRequestAlreadyResolved
	}

	updated := current[idx]
	updated.Status = status
	responder := donorID
	resolvedAt := at
	updated.RespondedByDonorID = &responder
	updated.ResolvedAt = &resolvedAt
	if status == domain.RequestStatusAccepted {
		accepted := donorID
		updated.AcceptedByDonorID = &accepted
	}

	next := slices.Clone(current)
	next[idx] = updated
	r.snapshot.Store(&next)
	return updated, nil
}

func (r *requestRepository) List(_ context.Context) ([]domain.Request, error) {
	return slices.Clone(r.load()), nil
}

func (r *requestRepository) ListByBloodGroup(_ context.Context, group domain.BloodGroup) ([]domain.Request, error) {
	current := r.load()
	out := make([]domain.Request, 0, len(current))
	for _, req := range current {
		if req.BloodGroup == group {
			out = append(out, req)
		}
	}
	return out, nil
}
