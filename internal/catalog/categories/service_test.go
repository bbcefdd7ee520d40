package categories

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

type mockRepo struct {
	rows []Category
	err  error
}

func (m *mockRepo) List(ctx context.Context) ([]Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := append([]Category(nil), m.rows...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockRepo) Create(ctx context.Context, c Category) (Category, error) {
	c.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, c)
	return c, nil
}

func TestCreateAndListOrderedByName(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	for _, name := range []string{"Pasteles", "Bollería", " Pan dulce "} {
		_, err := svc.Create(ctx, Category{Name: name})
		require.NoError(t, err)
	}
	out, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"Bollería", "Pan dulce", "Pasteles"}, []string{out[0].Name, out[1].Name, out[2].Name})
}

func TestCreateRejectsBlankName(t *testing.T) {
	repo := &mockRepo{}
	_, err := NewService(repo).Create(context.Background(), Category{Name: " "})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Empty(t, repo.rows)
}

func TestListDegrades(t *testing.T) {
	out, err := NewService(&mockRepo{err: errors.New("down")}).List(context.Background())
	require.ErrorIs(t, err, shared.ErrPersistence)
	assert.NotNil(t, out)
}
