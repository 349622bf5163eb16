package cloudresource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   string
	Name string
}

type MockRawBackend struct {
	mock.Mock
}

func (m *MockRawBackend) RawGetByID(ctx context.Context, id string) (record, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(record), args.Bool(1), args.Error(2)
}

func (m *MockRawBackend) RawGetByName(ctx context.Context, name string) ([]record, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]record), args.Error(1)
}

func (m *MockRawBackend) RawGetAll(ctx context.Context) ([]record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]record), args.Error(1)
}

func convertRecord(r record) (*Network, error) {
	if r.Name == "broken" {
		return nil, errors.New("cannot convert")
	}
	return &Network{Metadata: Metadata{Identifier: r.ID, Name: r.Name}}, nil
}

func newConverting(backend *MockRawBackend) Converting[*Network, record] {
	return Converting[*Network, record]{Backend: backend, Convert: convertRecord}
}

func TestConvertingGetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		backend := new(MockRawBackend)
		backend.On("RawGetByID", ctx, "n-1").Return(record{ID: "n-1", Name: "private"}, true, nil)

		network, ok, err := newConverting(backend).GetByID(ctx, "n-1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "private", network.Name)
		backend.AssertExpectations(t)
	})

	t.Run("Absent", func(t *testing.T) {
		backend := new(MockRawBackend)
		backend.On("RawGetByID", ctx, "n-1").Return(record{}, false, nil)

		network, ok, err := newConverting(backend).GetByID(ctx, "n-1")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, network)
	})

	t.Run("Identifier Mismatch", func(t *testing.T) {
		backend := new(MockRawBackend)
		backend.On("RawGetByID", ctx, "n-1").Return(record{ID: "n-2", Name: "private"}, true, nil)

		_, ok, err := newConverting(backend).GetByID(ctx, "n-1")
		assert.ErrorIs(t, err, ErrInconsistentBackend)
		assert.False(t, ok)
	})

	t.Run("Conversion Error", func(t *testing.T) {
		backend := new(MockRawBackend)
		backend.On("RawGetByID", ctx, "n-1").Return(record{ID: "n-1", Name: "broken"}, true, nil)

		_, _, err := newConverting(backend).GetByID(ctx, "n-1")
		assert.ErrorContains(t, err, "cannot convert")
	})

	t.Run("Backend Error", func(t *testing.T) {
		backend := new(MockRawBackend)
		backend.On("RawGetByID", ctx, "n-1").Return(record{}, false, assert.AnError)

		_, _, err := newConverting(backend).GetByID(ctx, "n-1")
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestConvertingGetByName(t *testing.T) {
	ctx := context.Background()

	t.Run("All Named", func(t *testing.T) {
		backend := new(MockRawBackend)
		backend.On("RawGetByName", ctx, "private").Return([]record{{ID: "n-1", Name: "private"}, {ID: "n-2", Name: "private"}}, nil)

		networks, err := newConverting(backend).GetByName(ctx, "private")
		require.NoError(t, err)
		assert.Len(t, networks, 2)
	})

	t.Run("Foreign Name", func(t *testing.T) {
		backend := new(MockRawBackend)
		backend.On("RawGetByName", ctx, "private").Return([]record{{ID: "n-1", Name: "private"}, {ID: "n-2", Name: "private-2"}}, nil)

		_, err := newConverting(backend).GetByName(ctx, "private")
		assert.ErrorIs(t, err, ErrInconsistentBackend)
	})

	t.Run("None", func(t *testing.T) {
		backend := new(MockRawBackend)
		backend.On("RawGetByName", ctx, "private").Return(nil, nil)

		networks, err := newConverting(backend).GetByName(ctx, "private")
		require.NoError(t, err)
		assert.Empty(t, networks)
	})
}

func TestConvertingGetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("Duplicates Collapsed", func(t *testing.T) {
		backend := new(MockRawBackend)
		backend.On("RawGetAll", ctx).Return([]record{
			{ID: "n-1", Name: "private"},
			{ID: "n-1", Name: "private"},
			{ID: "n-2", Name: "private"},
		}, nil)

		networks, err := newConverting(backend).GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, networks, 2)
	})

	t.Run("Conversion Error", func(t *testing.T) {
		backend := new(MockRawBackend)
		backend.On("RawGetAll", ctx).Return([]record{{ID: "n-1", Name: "broken"}}, nil)

		_, err := newConverting(backend).GetAll(ctx)
		assert.Error(t, err)
	})
}
