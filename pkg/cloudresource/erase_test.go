package cloudresource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// networkManager serves reads from a Converting and records creates and deletes
type networkManager struct {
	Converting[*Network, record]

	created []*Network
	deleted []string
}

func (m *networkManager) ItemType() Kind       { return KindNetwork }
func (m *networkManager) Connector() Connector { return nil }

func (m *networkManager) Create(_ context.Context, model *Network) (*Network, error) {
	if err := RequireNoIdentifier(model); err != nil {
		return nil, err
	}
	created := model.DeepCopyItem().(*Network)
	created.SetIdentifier("n-new")
	m.created = append(m.created, created)
	return created, nil
}

func (m *networkManager) Delete(_ context.Context, target DeleteTarget) error {
	id, err := target.ResolveIdentifier()
	if err != nil {
		return err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func TestErase(t *testing.T) {
	ctx := context.Background()
	backend := new(MockRawBackend)
	backend.On("RawGetByID", ctx, "n-1").Return(record{ID: "n-1", Name: "private"}, true, nil)
	backend.On("RawGetByID", ctx, "n-9").Return(record{}, false, nil)
	backend.On("RawGetByID", ctx, "private").Return(record{}, false, nil)
	backend.On("RawGetByName", ctx, "private").Return([]record{{ID: "n-1", Name: "private"}}, nil)
	backend.On("RawGetAll", ctx).Return([]record{{ID: "n-1", Name: "private"}}, nil)

	typed := &networkManager{Converting: newConverting(backend)}
	m := Erase[*Network](typed)

	assert.Equal(t, KindNetwork, m.ItemType())

	t.Run("Reads", func(t *testing.T) {
		item, ok, err := m.GetByID(ctx, "n-1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.IsType(t, &Network{}, item)

		item, ok, err = m.GetByID(ctx, "n-9")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, item, "an absent item is an untyped nil")

		byName, err := m.GetByName(ctx, "private")
		require.NoError(t, err)
		assert.Len(t, byName, 1)

		all, err := m.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("Create", func(t *testing.T) {
		created, err := m.Create(ctx, &Network{Metadata: Metadata{Name: "public"}})
		require.NoError(t, err)
		assert.Equal(t, "n-new", created.GetIdentifier())

		_, err = m.Create(ctx, &Image{Metadata: Metadata{Name: "ubuntu"}})
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Len(t, typed.created, 1)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, m.Delete(ctx, ByID("n-1")))
		assert.Equal(t, []string{"n-1"}, typed.deleted)
	})

	t.Run("Resolve Through Erased", func(t *testing.T) {
		id, err := Resolve(ctx, "private", m)
		require.NoError(t, err)
		assert.Equal(t, "n-1", id)
	})

	t.Run("Unerase", func(t *testing.T) {
		back, ok := Unerase[*Network](m)
		require.True(t, ok)
		assert.Same(t, typed, back)

		_, ok = Unerase[*Image](m)
		assert.False(t, ok)
	})
}
