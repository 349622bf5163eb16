package cloudresource

import (
	"fmt"
	"reflect"
	"slices"
	"time"
)

// Kind identifies the kind of resource a manager handles
type Kind string

const (
	// KindKeypair is an SSH key-pair
	KindKeypair Kind = "keypair"
	// KindInstance is a compute instance
	KindInstance Kind = "instance"
	// KindImage is a bootable image
	KindImage Kind = "image"
	// KindFlavor is an instance size (flavor or instance type)
	KindFlavor Kind = "flavor"
	// KindNetwork is a network (or subnet) instances attach to
	KindNetwork Kind = "network"
)

// Kinds lists every supported resource kind
var Kinds = []Kind{KindKeypair, KindInstance, KindImage, KindFlavor, KindNetwork}

// ParseKind converts a user supplied string into a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if slices.Contains(Kinds, k) {
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown resource kind %q", ErrInvalidInput, s)
}

// Item represents a generic cloud resource
type Item interface {
	// Kind returns the resource kind
	Kind() Kind

	// GetIdentifier returns the backend assigned identifier, empty before creation
	GetIdentifier() string

	// SetIdentifier sets the backend assigned identifier
	SetIdentifier(id string)

	// GetName returns the human readable name
	GetName() string

	// Equal reports whether other is the same kind with the same field values
	Equal(other Item) bool

	// DeepCopyItem returns an independent copy of the item
	DeepCopyItem() Item
}

// Metadata holds the fields shared by every resource kind
type Metadata struct {
	Identifier string `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
}

// GetIdentifier returns the backend assigned identifier
func (m *Metadata) GetIdentifier() string {
	return m.Identifier
}

// SetIdentifier sets the backend assigned identifier
func (m *Metadata) SetIdentifier(id string) {
	m.Identifier = id
}

// GetName returns the resource name
func (m *Metadata) GetName() string {
	return m.Name
}

// Timestamps holds creation and update times reported by the backend
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

func (t Timestamps) equal(o Timestamps) bool {
	return t.CreatedAt.Equal(o.CreatedAt) && t.UpdatedAt.Equal(o.UpdatedAt)
}

// Instance is a compute instance. Image, Flavor, KeyName and Networks hold
// name-or-identifier references until the instance has been created.
type Instance struct {
	Metadata   `json:",inline" yaml:",inline"`
	Timestamps `json:",inline" yaml:",inline"`
	Image      string   `json:"image,omitempty" yaml:"image,omitempty"`
	Flavor     string   `json:"flavor,omitempty" yaml:"flavor,omitempty"`
	KeyName    string   `json:"keyName,omitempty" yaml:"keyName,omitempty"`
	Networks   []string `json:"networks,omitempty" yaml:"networks,omitempty"`
	Status     string   `json:"status,omitempty" yaml:"status,omitempty"`
}

// Kind returns KindInstance
func (i *Instance) Kind() Kind {
	return KindInstance
}

// Equal compares all fields of two instances
func (i *Instance) Equal(other Item) bool {
	o, ok := other.(*Instance)
	if !ok || o == nil {
		return false
	}
	return i.Metadata == o.Metadata &&
		i.Timestamps.equal(o.Timestamps) &&
		i.Image == o.Image &&
		i.Flavor == o.Flavor &&
		i.KeyName == o.KeyName &&
		slices.Equal(i.Networks, o.Networks) &&
		i.Status == o.Status
}

// DeepCopyItem returns a copy of the instance
func (i *Instance) DeepCopyItem() Item {
	c := *i
	c.Networks = slices.Clone(i.Networks)
	return &c
}

// Image is a bootable image
type Image struct {
	Metadata   `json:",inline" yaml:",inline"`
	Timestamps `json:",inline" yaml:",inline"`
	Protected  bool `json:"protected" yaml:"protected"`
}

// Kind returns KindImage
func (i *Image) Kind() Kind {
	return KindImage
}

// Equal compares all fields of two images
func (i *Image) Equal(other Item) bool {
	o, ok := other.(*Image)
	if !ok || o == nil {
		return false
	}
	return i.Metadata == o.Metadata && i.Timestamps.equal(o.Timestamps) && i.Protected == o.Protected
}

// DeepCopyItem returns a copy of the image
func (i *Image) DeepCopyItem() Item {
	c := *i
	return &c
}

// Flavor is an instance size
type Flavor struct {
	Metadata `json:",inline" yaml:",inline"`
}

// Kind returns KindFlavor
func (f *Flavor) Kind() Kind {
	return KindFlavor
}

// Equal compares all fields of two flavors
func (f *Flavor) Equal(other Item) bool {
	o, ok := other.(*Flavor)
	return ok && o != nil && f.Metadata == o.Metadata
}

// DeepCopyItem returns a copy of the flavor
func (f *Flavor) DeepCopyItem() Item {
	c := *f
	return &c
}

// Network is a network instances can be attached to
type Network struct {
	Metadata `json:",inline" yaml:",inline"`
}

// Kind returns KindNetwork
func (n *Network) Kind() Kind {
	return KindNetwork
}

// Equal compares all fields of two networks
func (n *Network) Equal(other Item) bool {
	o, ok := other.(*Network)
	return ok && o != nil && n.Metadata == o.Metadata
}

// DeepCopyItem returns a copy of the network
func (n *Network) DeepCopyItem() Item {
	c := *n
	return &c
}

// Dedupe collapses items that are equal by value, keeping the first occurrence
func Dedupe[T Item](items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !Contains(out, item) {
			out = append(out, item)
		}
	}
	return out
}

// Contains reports whether items holds an item equal by value to target
func Contains[T Item](items []T, target T) bool {
	return slices.ContainsFunc(items, func(item T) bool {
		return item.Equal(target)
	})
}

func isNil(item Item) bool {
	if item == nil {
		return true
	}
	v := reflect.ValueOf(item)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
