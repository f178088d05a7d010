package citizens

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for citizen storage
type Repository interface {
	Create(ctx context.Context, req *CreateCitizenRequest) (*Citizen, error)
	List(ctx context.Context, offset, limit int) ([]*Citizen, error)
	GetByDNI(ctx context.Context, dni string) (*Citizen, error)
	Update(ctx context.Context, dni string, req *UpdateCitizenRequest) (*Citizen, error)
	Delete(ctx context.Context, dni string) error
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu       sync.RWMutex
	citizens map[string]*Citizen
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		citizens: make(map[string]*Citizen),
	}
}

// Create registers a new citizen in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateCitizenRequest) (*Citizen, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.citizens[req.DNI]; exists {
		return nil, ErrDuplicateDNI
	}

	citizen := &Citizen{
		ID:        uuid.New().String(),
		DNI:       req.DNI,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		CreatedAt: time.Now().UTC(),
	}
	r.citizens[req.DNI] = citizen
	return citizen, nil
}

// List returns a page of citizens ordered by registration time
func (r *InMemoryRepository) List(ctx context.Context, offset, limit int) ([]*Citizen, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Citizen, 0, len(r.citizens))
	for _, c := range r.citizens {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// GetByDNI retrieves a citizen by identity number
func (r *InMemoryRepository) GetByDNI(ctx context.Context, dni string) (*Citizen, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	citizen, ok := r.citizens[dni]
	if !ok {
		return nil, ErrCitizenNotFound
	}
	return citizen, nil
}

// Update overwrites the mutable fields that are set in the request
func (r *InMemoryRepository) Update(ctx context.Context, dni string, req *UpdateCitizenRequest) (*Citizen, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	citizen, ok := r.citizens[dni]
	if !ok {
		return nil, ErrCitizenNotFound
	}
	if req.FirstName != "" {
		citizen.FirstName = req.FirstName
	}
	if req.LastName != "" {
		citizen.LastName = req.LastName
	}
	if req.Email != "" {
		citizen.Email = req.Email
	}
	return citizen, nil
}

// Delete removes the citizen
func (r *InMemoryRepository) Delete(ctx context.Context, dni string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.citizens[dni]; !ok {
		return ErrCitizenNotFound
	}
	delete(r.citizens, dni)
	return nil
}
