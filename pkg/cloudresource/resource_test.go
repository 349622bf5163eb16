package cloudresource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds {
		parsed, err := ParseKind(string(kind))
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseKind("volume")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestInstanceEqual(t *testing.T) {
	now := time.Now()
	a := &Instance{
		Metadata:   Metadata{Identifier: "i-1", Name: "web"},
		Timestamps: Timestamps{CreatedAt: now, UpdatedAt: now},
		Image:      "img",
		Flavor:     "small",
		Networks:   []string{"net-1", "net-2"},
	}

	b := a.DeepCopyItem().(*Instance)
	assert.True(t, a.Equal(b))

	b.Networks[0] = "net-3"
	assert.False(t, a.Equal(b))
	assert.Equal(t, "net-1", a.Networks[0], "copies do not share networks")

	c := a.DeepCopyItem().(*Instance)
	c.CreatedAt = now.In(time.UTC)
	assert.True(t, a.Equal(c), "timestamps compare as instants")
}

func TestDedupe(t *testing.T) {
	items := []*Network{
		{Metadata: Metadata{Identifier: "n-1", Name: "private"}},
		{Metadata: Metadata{Identifier: "n-2", Name: "private"}},
		{Metadata: Metadata{Identifier: "n-1", Name: "private"}},
	}

	deduped := Dedupe(items)
	require.Len(t, deduped, 2)
	assert.Same(t, items[0], deduped[0])
	assert.Same(t, items[1], deduped[1])

	assert.True(t, Contains(items, &Network{Metadata: Metadata{Identifier: "n-2", Name: "private"}}))
	assert.False(t, Contains(items, &Network{Metadata: Metadata{Identifier: "n-3", Name: "private"}}))
}

func TestDeleteTarget(t *testing.T) {
	item := &Image{Metadata: Metadata{Identifier: "img-1", Name: "ubuntu"}}

	tests := []struct {
		name     string
		target   DeleteTarget
		expected string
		wantErr  bool
	}{
		{name: "By Identifier", target: ByID("img-1"), expected: "img-1"},
		{name: "By Item", target: ByItem(item), expected: "img-1"},
		{name: "Both Agreeing", target: DeleteTarget{Item: item, Identifier: "img-1"}, expected: "img-1"},
		{name: "Both Disagreeing", target: DeleteTarget{Item: item, Identifier: "img-2"}, wantErr: true},
		{name: "Neither", target: DeleteTarget{}, wantErr: true},
		{name: "Typed Nil Item", target: ByItem((*Image)(nil)), wantErr: true},
		{name: "Item Without Identifier", target: ByItem(&Image{Metadata: Metadata{Name: "ubuntu"}}), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, err := tc.target.ResolveIdentifier()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				assert.Empty(t, id)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestRequireNoIdentifier(t *testing.T) {
	assert.NoError(t, RequireNoIdentifier(&Flavor{Metadata: Metadata{Name: "small"}}))
	assert.ErrorIs(t, RequireNoIdentifier(&Flavor{Metadata: Metadata{Identifier: "f-1"}}), ErrInvalidInput)
	assert.ErrorIs(t, RequireNoIdentifier(nil), ErrInvalidInput)
	assert.ErrorIs(t, RequireNoIdentifier((*Flavor)(nil)), ErrInvalidInput)
}

func TestErrors(t *testing.T) {
	notFound := &NotFoundError{Kind: KindImage, Value: "ubuntu"}
	itemNotFound := &ItemNotFoundError{Kind: KindImage, Value: "ubuntu", Err: notFound}

	assert.ErrorIs(t, itemNotFound, ErrItemNotFound)
	assert.ErrorIs(t, itemNotFound, ErrNotFound)
	assert.NotErrorIs(t, notFound, ErrItemNotFound)

	var asNotFound *NotFoundError
	require.ErrorAs(t, itemNotFound, &asNotFound)
	assert.Equal(t, "ubuntu", asNotFound.Value)

	assert.ErrorIs(t, &AmbiguousError{Kind: KindImage, Value: "ubuntu", Matches: 2}, ErrAmbiguous)
	assert.ErrorIs(t, &DuplicateNameError{Kind: KindKeypair, Name: "deploy"}, ErrDuplicateName)
	assert.ErrorIs(t, &UnsupportedConnectorError{Connector: "*x.Connector", Kind: KindImage}, ErrUnsupportedConnector)

	backendErr := assert.AnError
	invalidState := &InvalidStateError{Kind: KindInstance, Identifier: "i-1", Err: backendErr}
	assert.ErrorIs(t, invalidState, ErrInvalidState)
	assert.ErrorIs(t, invalidState, backendErr)
}
