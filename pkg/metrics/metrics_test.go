package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/cloudresource/provider/mock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "success"},
		{&cr.NotFoundError{Kind: cr.KindImage, Value: "x"}, "not_found"},
		{&cr.ItemNotFoundError{Kind: cr.KindImage, Value: "x"}, "not_found"},
		{&cr.AmbiguousError{Kind: cr.KindImage, Value: "x", Matches: 2}, "ambiguous"},
		{&cr.DuplicateNameError{Kind: cr.KindKeypair, Name: "x"}, "duplicate_name"},
		{fmt.Errorf("%w: bad", cr.ErrInvalidInput), "invalid_input"},
		{&cr.InvalidStateError{Kind: cr.KindInstance, Identifier: "x"}, "invalid_state"},
		{fmt.Errorf("%w: no", cr.ErrUnsupportedOperation), "unsupported"},
		{errors.New("boom"), "error"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, Result(tc.err))
		})
	}
}

func TestInstrument(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	m := Instrument[*cr.Network](mock.NewNetworkManager(mock.NewConnector(mock.NewStore())), r)
	assert.Equal(t, cr.KindNetwork, m.ItemType())

	created, err := m.Create(ctx, &cr.Network{Metadata: cr.Metadata{Name: "private"}})
	require.NoError(t, err)
	_, err = m.GetByName(ctx, "private")
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, cr.ByItem(created)))
	assert.Error(t, m.Delete(ctx, cr.ByItem(created)))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("network", OpCreate, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("network", OpGetByName, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("network", OpDelete, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("network", OpDelete, "not_found")))
	assert.Equal(t, 4, testutil.CollectAndCount(r.operations))
	assert.Equal(t, 3, testutil.CollectAndCount(r.duration))
}

func TestInstrumentNilRecorder(t *testing.T) {
	m := mock.NewImageManager(mock.NewConnector(mock.NewStore()))
	assert.Same(t, cr.Manager[*cr.Image](m), Instrument[*cr.Image](m, nil))
}
