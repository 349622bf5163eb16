// Package managertest checks Manager implementations against the behaviour
// every backend shares.
package managertest

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// Contract describes how to exercise a manager
type Contract[T cr.Item] struct {
	// New returns a manager over an empty backend, apart from whatever the
	// models returned by Model reference
	New func(t *testing.T) cr.Manager[T]

	// Model returns a creatable model named name
	Model func(t *testing.T, name string) T

	// UniqueNames is set for kinds whose backend rejects duplicate names
	UniqueNames bool
}

// Run runs the contract as subtests of t
func (c Contract[T]) Run(t *testing.T) {
	t.Run("Create Assigns Identifier", func(t *testing.T) {
		ctx := context.Background()
		m := c.New(t)

		created, err := m.Create(ctx, c.Model(t, "alpha"))
		require.NoError(t, err)
		assert.NotEmpty(t, created.GetIdentifier())
		assert.Equal(t, "alpha", created.GetName())
		assert.Equal(t, m.ItemType(), created.Kind())
	})

	t.Run("Create Rejects Identifier", func(t *testing.T) {
		ctx := context.Background()
		m := c.New(t)

		model := c.Model(t, "alpha")
		model.SetIdentifier("already-set")
		_, err := m.Create(ctx, model)
		assert.ErrorIs(t, err, cr.ErrInvalidInput)

		all, err := m.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, named(all, "alpha"))
	})

	t.Run("Reads Agree", func(t *testing.T) {
		ctx := context.Background()
		m := c.New(t)

		created, err := m.Create(ctx, c.Model(t, "alpha"))
		require.NoError(t, err)

		got, ok, err := m.GetByID(ctx, created.GetIdentifier())
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, created.Equal(got), "GetByID returned %+v, created %+v", got, created)

		byName, err := m.GetByName(ctx, "alpha")
		require.NoError(t, err)
		assert.True(t, cr.Contains(byName, created))
		for _, item := range byName {
			assert.Equal(t, "alpha", item.GetName())
		}

		all, err := m.GetAll(ctx)
		require.NoError(t, err)
		assert.True(t, cr.Contains(all, created))
	})

	t.Run("Missing Items", func(t *testing.T) {
		ctx := context.Background()
		m := c.New(t)

		_, ok, err := m.GetByID(ctx, "does-not-exist")
		require.NoError(t, err)
		assert.False(t, ok)

		byName, err := m.GetByName(ctx, "does-not-exist")
		require.NoError(t, err)
		assert.Empty(t, byName)

		exists, err := cr.AssertExists(ctx, "does-not-exist", m)
		assert.ErrorIs(t, err, cr.ErrItemNotFound)
		assert.False(t, exists)

		_, err = cr.Resolve(ctx, "does-not-exist", m)
		assert.ErrorIs(t, err, cr.ErrNotFound)
		assert.NotErrorIs(t, err, cr.ErrItemNotFound)
	})

	t.Run("Resolve", func(t *testing.T) {
		ctx := context.Background()
		m := c.New(t)

		created, err := m.Create(ctx, c.Model(t, "alpha"))
		require.NoError(t, err)

		id, err := cr.Resolve(ctx, created.GetIdentifier(), m)
		require.NoError(t, err)
		assert.Equal(t, created.GetIdentifier(), id)

		id, err = cr.Resolve(ctx, "alpha", m)
		require.NoError(t, err)
		assert.Equal(t, created.GetIdentifier(), id)

		exists, err := cr.AssertExists(ctx, "alpha", m)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Identifier Wins Over Name", func(t *testing.T) {
		ctx := context.Background()
		m := c.New(t)

		first, err := m.Create(ctx, c.Model(t, "alpha"))
		require.NoError(t, err)
		impostor, err := m.Create(ctx, c.Model(t, first.GetIdentifier()))
		require.NoError(t, err)
		require.NotEqual(t, first.GetIdentifier(), impostor.GetIdentifier())

		id, err := cr.Resolve(ctx, first.GetIdentifier(), m)
		require.NoError(t, err)
		assert.Equal(t, first.GetIdentifier(), id)

		id, err = cr.Resolve(ctx, impostor.GetIdentifier(), m)
		require.NoError(t, err)
		assert.Equal(t, impostor.GetIdentifier(), id)
	})

	t.Run("Get All Counts Creates", func(t *testing.T) {
		ctx := context.Background()
		m := c.New(t)

		names := []string{"alpha", "beta", "gamma"}
		created := make([]T, 0, len(names))
		for _, name := range names {
			item, err := m.Create(ctx, c.Model(t, name))
			require.NoError(t, err)
			created = append(created, item)
		}

		all, err := m.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, len(names))
		for _, item := range created {
			assert.True(t, cr.Contains(all, item), "GetAll is missing %s", item.GetIdentifier())
		}
	})

	t.Run("Duplicate Names", func(t *testing.T) {
		ctx := context.Background()
		m := c.New(t)

		first, err := m.Create(ctx, c.Model(t, "same_name"))
		require.NoError(t, err)

		if c.UniqueNames {
			_, err := m.Create(ctx, c.Model(t, "same_name"))
			assert.ErrorIs(t, err, cr.ErrDuplicateName)

			byName, err := m.GetByName(ctx, "same_name")
			require.NoError(t, err)
			assert.Len(t, byName, 1)
			return
		}

		items := []T{first}
		for range 2 {
			item, err := m.Create(ctx, c.Model(t, "same_name"))
			require.NoError(t, err)
			items = append(items, item)
		}

		byName, err := m.GetByName(ctx, "same_name")
		require.NoError(t, err)
		assert.Len(t, byName, 3)

		_, err = cr.Resolve(ctx, "same_name", m)
		var ambiguous *cr.AmbiguousError
		require.ErrorAs(t, err, &ambiguous)
		assert.Equal(t, 3, ambiguous.Matches)

		for _, item := range items {
			assert.True(t, cr.Contains(byName, item))
			id, err := cr.Resolve(ctx, item.GetIdentifier(), m)
			require.NoError(t, err)
			assert.Equal(t, item.GetIdentifier(), id)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		ctx := context.Background()
		m := c.New(t)

		byItem, err := m.Create(ctx, c.Model(t, "by-item"))
		require.NoError(t, err)
		byID, err := m.Create(ctx, c.Model(t, "by-id"))
		require.NoError(t, err)

		require.NoError(t, m.Delete(ctx, cr.ByItem(byItem)))
		require.NoError(t, m.Delete(ctx, cr.ByID(byID.GetIdentifier())))

		for _, id := range []string{byItem.GetIdentifier(), byID.GetIdentifier()} {
			_, ok, err := m.GetByID(ctx, id)
			require.NoError(t, err)
			assert.False(t, ok)
		}
	})

	t.Run("Delete Rejects Bad Targets", func(t *testing.T) {
		ctx := context.Background()
		m := c.New(t)

		created, err := m.Create(ctx, c.Model(t, "alpha"))
		require.NoError(t, err)

		assert.ErrorIs(t, m.Delete(ctx, cr.DeleteTarget{}), cr.ErrInvalidInput)
		assert.ErrorIs(t, m.Delete(ctx, cr.DeleteTarget{Item: created, Identifier: "other"}), cr.ErrInvalidInput)

		_, ok, err := m.GetByID(ctx, created.GetIdentifier())
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

// PublicKey returns a freshly generated OpenSSH ed25519 public key
func PublicKey(t *testing.T) string {
	t.Helper()

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)

	return strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub)))
}

func named[T cr.Item](items []T, name string) []T {
	var matched []T
	for _, item := range items {
		if item.GetName() == name {
			matched = append(matched, item)
		}
	}
	return matched
}
