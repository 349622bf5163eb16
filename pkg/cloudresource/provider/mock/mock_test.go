package mock

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/cloudresource/managertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeDeps struct {
	conn *Connector
}

func (d storeDeps) Images() (cr.Manager[*cr.Image], error)     { return NewImageManager(d.conn), nil }
func (d storeDeps) Flavors() (cr.Manager[*cr.Flavor], error)   { return NewFlavorManager(d.conn), nil }
func (d storeDeps) Keypairs() (cr.Manager[*cr.Keypair], error) { return NewKeypairManager(d.conn), nil }
func (d storeDeps) Networks() (cr.Manager[*cr.Network], error) { return NewNetworkManager(d.conn), nil }

func seeded(t *testing.T, seed Seed) *Connector {
	t.Helper()
	conn := NewConnector(NewStore())
	require.NoError(t, seed.Apply(context.Background(), conn))
	return conn
}

func TestManagerContract(t *testing.T) {
	t.Run("Keypair", func(t *testing.T) {
		managertest.Contract[*cr.Keypair]{
			New: func(t *testing.T) cr.Manager[*cr.Keypair] {
				return NewKeypairManager(NewConnector(NewStore()))
			},
			Model: func(t *testing.T, name string) *cr.Keypair {
				k, err := cr.NewKeypair(name, managertest.PublicKey(t))
				require.NoError(t, err)
				return k
			},
			UniqueNames: true,
		}.Run(t)
	})

	t.Run("Image", func(t *testing.T) {
		managertest.Contract[*cr.Image]{
			New: func(t *testing.T) cr.Manager[*cr.Image] {
				return NewImageManager(NewConnector(NewStore()))
			},
			Model: func(t *testing.T, name string) *cr.Image {
				return &cr.Image{Metadata: cr.Metadata{Name: name}}
			},
		}.Run(t)
	})

	t.Run("Flavor", func(t *testing.T) {
		managertest.Contract[*cr.Flavor]{
			New: func(t *testing.T) cr.Manager[*cr.Flavor] {
				return NewFlavorManager(NewConnector(NewStore()))
			},
			Model: func(t *testing.T, name string) *cr.Flavor {
				return &cr.Flavor{Metadata: cr.Metadata{Name: name}}
			},
		}.Run(t)
	})

	t.Run("Network", func(t *testing.T) {
		managertest.Contract[*cr.Network]{
			New: func(t *testing.T) cr.Manager[*cr.Network] {
				return NewNetworkManager(NewConnector(NewStore()))
			},
			Model: func(t *testing.T, name string) *cr.Network {
				return &cr.Network{Metadata: cr.Metadata{Name: name}}
			},
		}.Run(t)
	})

	t.Run("Instance", func(t *testing.T) {
		managertest.Contract[*cr.Instance]{
			New: func(t *testing.T) cr.Manager[*cr.Instance] {
				conn := seeded(t, Seed{Images: []string{"ubuntu"}, Flavors: []string{"small"}})
				return NewInstanceManager(conn, storeDeps{conn})
			},
			Model: func(t *testing.T, name string) *cr.Instance {
				return &cr.Instance{Metadata: cr.Metadata{Name: name}, Image: "ubuntu", Flavor: "small"}
			},
		}.Run(t)
	})
}

func TestKeypairManager(t *testing.T) {
	t.Run("Duplicate Name Leaves Store Unchanged", func(t *testing.T) {
		ctx := context.Background()
		conn := NewConnector(NewStore())
		m := NewKeypairManager(conn)

		first, err := cr.NewKeypair("deploy", managertest.PublicKey(t))
		require.NoError(t, err)
		_, err = m.Create(ctx, first)
		require.NoError(t, err)

		second, err := cr.NewKeypair("deploy", managertest.PublicKey(t))
		require.NoError(t, err)
		_, err = m.Create(ctx, second)

		var duplicate *cr.DuplicateNameError
		require.ErrorAs(t, err, &duplicate)
		assert.Equal(t, "deploy", duplicate.Name)
		assert.Equal(t, 1, conn.Store.Len(cr.KindKeypair))
	})

	t.Run("Public Key Survives", func(t *testing.T) {
		ctx := context.Background()
		m := NewKeypairManager(NewConnector(NewStore()))

		publicKey := managertest.PublicKey(t)
		model, err := cr.NewKeypair("deploy", publicKey)
		require.NoError(t, err)

		created, err := m.Create(ctx, model)
		require.NoError(t, err)
		assert.Equal(t, publicKey, created.PublicKey())
		assert.Empty(t, model.GetIdentifier(), "model must not be modified")
	})
}

func TestItemManager(t *testing.T) {
	t.Run("Delete Missing", func(t *testing.T) {
		err := NewImageManager(NewConnector(NewStore())).Delete(context.Background(), cr.ByID("nope"))
		assert.ErrorIs(t, err, cr.ErrNotFound)
	})

	t.Run("Timestamps", func(t *testing.T) {
		ctx := context.Background()
		m := NewImageManager(NewConnector(NewStore()))
		fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		m.now = func() time.Time { return fixed }

		created, err := m.Create(ctx, &cr.Image{Metadata: cr.Metadata{Name: "ubuntu"}})
		require.NoError(t, err)
		assert.Equal(t, fixed, created.CreatedAt)
		assert.Equal(t, fixed, created.UpdatedAt)

		kept := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		created, err = m.Create(ctx, &cr.Image{Metadata: cr.Metadata{Name: "old"}, Timestamps: cr.Timestamps{CreatedAt: kept}})
		require.NoError(t, err)
		assert.Equal(t, kept, created.CreatedAt)
		assert.Equal(t, fixed, created.UpdatedAt)
	})

	t.Run("Reads Return Copies", func(t *testing.T) {
		ctx := context.Background()
		m := NewNetworkManager(NewConnector(NewStore()))

		created, err := m.Create(ctx, &cr.Network{Metadata: cr.Metadata{Name: "private"}})
		require.NoError(t, err)
		created.Name = "renamed"

		got, ok, err := m.GetByID(ctx, created.GetIdentifier())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "private", got.Name)
	})

	t.Run("Concurrent Creates", func(t *testing.T) {
		ctx := context.Background()
		conn := NewConnector(NewStore())
		m := NewKeypairManager(conn)

		var wg sync.WaitGroup
		errs := make([]error, 20)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = m.Create(ctx, &cr.Keypair{Metadata: cr.Metadata{Name: fmt.Sprintf("key-%d", i%10)}})
			}()
		}
		wg.Wait()

		failed := 0
		for _, err := range errs {
			if err != nil {
				assert.ErrorIs(t, err, cr.ErrDuplicateName)
				failed++
			}
		}
		assert.Equal(t, 10, failed)
		assert.Equal(t, 10, conn.Store.Len(cr.KindKeypair))
	})
}

func TestInstanceManager(t *testing.T) {
	seed := Seed{
		Images:   []string{"ubuntu", "ubuntu", "debian"},
		Flavors:  []string{"small"},
		Networks: []string{"public", "private"},
	}

	t.Run("Resolves References", func(t *testing.T) {
		ctx := context.Background()
		conn := seeded(t, seed)
		m := NewInstanceManager(conn, storeDeps{conn})

		debian, err := NewImageManager(conn).GetByName(ctx, "debian")
		require.NoError(t, err)
		require.Len(t, debian, 1)
		small, err := NewFlavorManager(conn).GetByName(ctx, "small")
		require.NoError(t, err)
		require.Len(t, small, 1)
		private, err := NewNetworkManager(conn).GetByName(ctx, "private")
		require.NoError(t, err)
		require.Len(t, private, 1)

		created, err := m.Create(ctx, &cr.Instance{
			Metadata: cr.Metadata{Name: "web"},
			Image:    "debian",
			Flavor:   small[0].GetIdentifier(),
			Networks: []string{"private"},
		})
		require.NoError(t, err)
		assert.Equal(t, debian[0].GetIdentifier(), created.Image)
		assert.Equal(t, small[0].GetIdentifier(), created.Flavor)
		assert.Equal(t, []string{private[0].GetIdentifier()}, created.Networks)
		assert.Empty(t, created.KeyName)
	})

	t.Run("Ambiguous Image Creates Nothing", func(t *testing.T) {
		ctx := context.Background()
		conn := seeded(t, seed)
		m := NewInstanceManager(conn, storeDeps{conn})

		_, err := m.Create(ctx, &cr.Instance{Metadata: cr.Metadata{Name: "web"}, Image: "ubuntu", Flavor: "small"})
		assert.ErrorIs(t, err, cr.ErrAmbiguous)
		assert.Equal(t, 0, conn.Store.Len(cr.KindInstance))
	})

	t.Run("Missing Keypair Creates Nothing", func(t *testing.T) {
		ctx := context.Background()
		conn := seeded(t, seed)
		m := NewInstanceManager(conn, storeDeps{conn})

		_, err := m.Create(ctx, &cr.Instance{Metadata: cr.Metadata{Name: "web"}, Image: "debian", Flavor: "small", KeyName: "absent"})
		assert.ErrorIs(t, err, cr.ErrItemNotFound)
		assert.Equal(t, 0, conn.Store.Len(cr.KindInstance))
	})
}

func TestSeed(t *testing.T) {
	publicKey := managertest.PublicKey(t)
	conn := seeded(t, Seed{
		Images:   []string{"ubuntu"},
		Flavors:  []string{"small", "large"},
		Keypairs: map[string]string{"deploy": publicKey},
	})

	assert.Equal(t, 1, conn.Store.Len(cr.KindImage))
	assert.Equal(t, 2, conn.Store.Len(cr.KindFlavor))
	assert.Equal(t, 0, conn.Store.Len(cr.KindNetwork))

	keys, err := NewKeypairManager(conn).GetByName(context.Background(), "deploy")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, publicKey, keys[0].PublicKey())

	err = Seed{Keypairs: map[string]string{"deploy": publicKey}}.Apply(context.Background(), conn)
	assert.ErrorIs(t, err, cr.ErrDuplicateName)
}
