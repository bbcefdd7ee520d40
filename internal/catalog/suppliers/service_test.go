package suppliers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

type mockRepo struct {
	rows []Supplier
	err  error
}

func (m *mockRepo) ListActive(ctx context.Context) ([]Supplier, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []Supplier
	for _, s := range m.rows {
		if s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockRepo) Create(ctx context.Context, in AddSupplierInput) (Supplier, error) {
	s := Supplier{ID: int64(len(m.rows) + 1), Name: in.Name, Contact: in.Contact, Email: in.Email, Phone: in.Phone, Active: true}
	m.rows = append(m.rows, s)
	return s, nil
}

func TestAddSupplier(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)
	contact := "  Don Memo "

	s, err := svc.Add(context.Background(), AddSupplierInput{Name: "Harinera del Norte", Contact: &contact})
	require.NoError(t, err)
	assert.True(t, s.Active)
	assert.Equal(t, "Don Memo", *s.Contact)

	_, err = svc.Add(context.Background(), AddSupplierInput{Name: ""})
	assert.ErrorIs(t, err, shared.ErrValidation)

	bad := "harinera"
	_, err = svc.Add(context.Background(), AddSupplierInput{Name: "Harinera", Email: &bad})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Len(t, repo.rows, 1)
}

func TestListActiveSuppliersOnly(t *testing.T) {
	repo := &mockRepo{rows: []Supplier{{ID: 1, Name: "A", Active: true}, {ID: 2, Name: "B"}}}
	out, err := NewService(repo).ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].ID)
}

func TestListSuppliersDegrades(t *testing.T) {
	out, err := NewService(&mockRepo{err: errors.New("down")}).ListActive(context.Background())
	assert.ErrorIs(t, err, shared.ErrPersistence)
	assert.Empty(t, out)
	assert.NotNil(t, out)
}
