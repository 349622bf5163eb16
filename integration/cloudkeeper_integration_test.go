//go:build integration

package integration_test

import (
	"context"
	"testing"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/config"
	"github.com/eliran89c/cloudkeeper/pkg/factory"
	"github.com/eliran89c/cloudkeeper/pkg/inventory"
	"github.com/eliran89c/cloudkeeper/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mockBackend = `
backend: mock
mock:
  images: [ubuntu, ubuntu, debian]
  flavors: [small, large]
  networks: [private, public]
`

func connect(t *testing.T) cr.Connector {
	t.Helper()
	cfg, err := config.ParseBytes([]byte(mockBackend))
	require.NoError(t, err)
	require.NoError(t, config.Validate(cfg))

	conn, err := cfg.Connector(context.Background())
	require.NoError(t, err)
	return conn
}

func TestInstanceLifecycle_EndToEnd(t *testing.T) {
	ctx := context.Background()
	conn := connect(t)
	reg := prometheus.NewRegistry()
	f := factory.New(factory.WithRecorder(metrics.NewRecorder(reg)))

	// debian is unique by name, both ubuntu images need an identifier
	_, err := f.CreateInstance(ctx, conn, &cr.Instance{
		Metadata: cr.Metadata{Name: "web"},
		Image:    "ubuntu",
		Flavor:   "small",
	})
	require.ErrorIs(t, err, cr.ErrAmbiguous)

	instances, err := f.Instances(conn)
	require.NoError(t, err)
	all, err := instances.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "a failed resolution must not create anything")

	created, err := f.CreateInstance(ctx, conn, &cr.Instance{
		Metadata: cr.Metadata{Name: "web"},
		Image:    "debian",
		Flavor:   "large",
		Networks: []string{"private", "public"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.Identifier)

	images, err := f.Images(conn)
	require.NoError(t, err)
	debian, err := cr.Resolve(ctx, "debian", images)
	require.NoError(t, err)
	assert.Equal(t, debian, created.Image)

	results, err := inventory.New(f, nil).Run(ctx, conn, nil)
	require.NoError(t, err)
	counts := map[cr.Kind]int{}
	for _, result := range results {
		require.NoError(t, result.Error)
		counts[result.Kind] = len(result.Items)
	}
	assert.Equal(t, 1, counts[cr.KindInstance])
	assert.Equal(t, 3, counts[cr.KindImage])

	require.NoError(t, instances.Delete(ctx, cr.ByItem(created)))
	_, ok, err := instances.GetByID(ctx, created.Identifier)
	require.NoError(t, err)
	assert.False(t, ok)

	count, err := testutil.GatherAndCount(reg, "cloudkeeper_manager_operations_total")
	require.NoError(t, err)
	assert.Positive(t, count)
}
