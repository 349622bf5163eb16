package mock

import (
	"context"
	"slices"
	"time"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// ItemManager manages the items of one kind held in a Store
type ItemManager[T cr.Item] struct {
	connector  *Connector
	kind       cr.Kind
	collection func(*Store) *[]T
	// checkCreate runs under the store lock before a model is appended
	checkCreate func(existing []T, model T) error
	now         func() time.Time
	log         logr.Logger
}

func newItemManager[T cr.Item](conn *Connector, kind cr.Kind, collection func(*Store) *[]T, opts []cr.ManagerOption) *ItemManager[T] {
	o := cr.BuildOptions(opts...)
	return &ItemManager[T]{
		connector:  conn,
		kind:       kind,
		collection: collection,
		now:        func() time.Time { return time.Now().UTC() },
		log:        o.Logger.WithValues("backend", cr.VariantMock, "kind", kind),
	}
}

// ItemType returns the managed kind
func (m *ItemManager[T]) ItemType() cr.Kind {
	return m.kind
}

// Connector returns the mock connector
func (m *ItemManager[T]) Connector() cr.Connector {
	return m.connector
}

// GetByID scans the collection for the identifier
func (m *ItemManager[T]) GetByID(_ context.Context, id string) (T, bool, error) {
	m.lock()
	defer m.unlock()

	for _, item := range *m.items() {
		if item.GetIdentifier() == id {
			return clone(item), true, nil
		}
	}

	var zero T
	return zero, false, nil
}

// GetByName scans the collection for the name
func (m *ItemManager[T]) GetByName(_ context.Context, name string) ([]T, error) {
	m.lock()
	defer m.unlock()

	matched := make([]T, 0)
	for _, item := range *m.items() {
		if item.GetName() == name {
			matched = append(matched, clone(item))
		}
	}
	return matched, nil
}

// GetAll copies the collection
func (m *ItemManager[T]) GetAll(_ context.Context) ([]T, error) {
	m.lock()
	defer m.unlock()

	all := make([]T, 0, len(*m.items()))
	for _, item := range *m.items() {
		all = append(all, clone(item))
	}
	return cr.Dedupe(all), nil
}

// Create stores a copy of model under a fresh identifier
func (m *ItemManager[T]) Create(_ context.Context, model T) (T, error) {
	var zero T
	if err := cr.RequireNoIdentifier(model); err != nil {
		return zero, err
	}

	created := clone(model)
	created.SetIdentifier(uuid.NewString())
	m.stamp(created)

	m.lock()
	defer m.unlock()

	items := m.items()
	if m.checkCreate != nil {
		if err := m.checkCreate(*items, created); err != nil {
			return zero, err
		}
	}
	*items = append(*items, created)

	m.log.Info("Created item", "id", created.GetIdentifier(), "name", created.GetName())
	return clone(created), nil
}

// Delete removes the item with the target identifier
func (m *ItemManager[T]) Delete(_ context.Context, target cr.DeleteTarget) error {
	id, err := target.ResolveIdentifier()
	if err != nil {
		return err
	}

	m.lock()
	defer m.unlock()

	items := m.items()
	before := len(*items)
	*items = slices.DeleteFunc(*items, func(item T) bool {
		return item.GetIdentifier() == id
	})
	if len(*items) == before {
		return &cr.NotFoundError{Kind: m.kind, Value: id}
	}

	m.log.Info("Deleted item", "id", id)
	return nil
}

func (m *ItemManager[T]) stamp(item T) {
	var ts *cr.Timestamps
	switch v := any(item).(type) {
	case *cr.Instance:
		ts = &v.Timestamps
	case *cr.Image:
		ts = &v.Timestamps
	default:
		return
	}
	now := m.now()
	if ts.CreatedAt.IsZero() {
		ts.CreatedAt = now
	}
	if ts.UpdatedAt.IsZero() {
		ts.UpdatedAt = now
	}
}

func (m *ItemManager[T]) items() *[]T {
	return m.collection(m.connector.Store)
}

func (m *ItemManager[T]) lock() {
	m.connector.Store.mu.Lock()
}

func (m *ItemManager[T]) unlock() {
	m.connector.Store.mu.Unlock()
}

func clone[T cr.Item](item T) T {
	return item.DeepCopyItem().(T)
}
