package category

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-api/internal/domain"
)

// memoryRepo enforces slug uniqueness like the categories table does.
type memoryRepo struct {
	bySlug map[string]domain.Category
	nextID int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{bySlug: make(map[string]domain.Category)}
}

func (r *memoryRepo) List(context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(r.bySlug))
	for _, c := range r.bySlug {
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	for _, c := range r.bySlug {
		if c.ID == id {
			clone := c
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) GetBySlug(_ context.Context, slug string) (*domain.Category, error) {
	c, ok := r.bySlug[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *memoryRepo) Create(_ context.Context, c domain.Category) (*domain.Category, error) {
	if _, exists := r.bySlug[c.Slug]; exists {
		return nil, domain.ErrAlreadyExists
	}
	r.nextID++
	c.ID = "cat-" + strconv.Itoa(r.nextID)
	r.bySlug[c.Slug] = c
	return &c, nil
}

func (r *memoryRepo) Update(ctx context.Context, c domain.Category) (*domain.Category, error) {
	old, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if other, exists := r.bySlug[c.Slug]; exists && other.ID != c.ID {
		return nil, domain.ErrAlreadyExists
	}
	delete(r.bySlug, old.Slug)
	r.bySlug[c.Slug] = c
	return &c, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	delete(r.bySlug, c.Slug)
	return nil
}

func TestCreate_DerivesSlugAndRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := New(newMemoryRepo())

	created, err := svc.Create(ctx, Input{Name: "  Summer Dresses & Skirts! "})
	require.NoError(t, err)
	assert.Equal(t, "summer-dresses-skirts", created.Slug)

	_, err = svc.Create(ctx, Input{Name: "summer dresses skirts"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.EqualError(t, err, "a category with this slug already exists")
}

func TestCreate_ExplicitSlugIsNormalised(t *testing.T) {
	svc := New(newMemoryRepo())

	created, err := svc.Create(context.Background(), Input{Name: "Hats", Slug: "Winter  Hats"})
	require.NoError(t, err)
	assert.Equal(t, "winter-hats", created.Slug)
}

func TestCreate_RequiresName(t *testing.T) {
	svc := New(newMemoryRepo())

	_, err := svc.Create(context.Background(), Input{Name: "   "})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"name"}, verr.Fields)
}

func TestUpdateAndDelete_MissingCategory(t *testing.T) {
	ctx := context.Background()
	svc := New(newMemoryRepo())

	_, err := svc.Update(ctx, "nope", Input{Name: "X"})
	assert.EqualError(t, err, "category not found")
	assert.ErrorIs(t, svc.Delete(ctx, "nope"), domain.ErrNotFound)
}
