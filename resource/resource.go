// Package resource holds the resource metadata registry.
//
// A Descriptor is the engine's view of a protected resource type: the
// ACL rules declared statically on the type and on individual
// properties, the method aliases a property answers to, and the default
// permission used when no rule decides. Descriptors are registered by
// the host application at startup and are never persisted; the engine
// re-derives static rules from them on every check.
package resource

import (
	"fmt"
	"sync"

	"github.com/ostium-io/ostium/sec"
)

// Spec declares one static ACL rule on a descriptor. Empty Property and
// AccessType mean the wildcard.
type Spec struct {
	Property      string            `json:"property,omitempty"`
	AccessType    sec.AccessType    `json:"access_type,omitempty"`
	PrincipalType sec.PrincipalType `json:"principal_type"`
	PrincipalID   string            `json:"principal_id"`
	Permission    sec.Permission    `json:"permission"`
}

// Property describes one property or method of a resource type.
type Property struct {
	// Aliases are alternative method names the property answers to;
	// a rule naming any alias matches the property exactly.
	Aliases []string `json:"aliases,omitempty"`

	// Rules are static ACL rules scoped to this property.
	Rules []Spec `json:"rules,omitempty"`
}

// Descriptor describes a protected resource type.
type Descriptor struct {
	// Name is the resource type name rules refer to.
	Name string `json:"name"`

	// DefaultPermission replaces DEFAULT when resolution ends undecided.
	// Empty falls through to the engine's configured fallback.
	DefaultPermission sec.Permission `json:"default_permission,omitempty"`

	// Rules are resource-level static ACL rules.
	Rules []Spec `json:"rules,omitempty"`

	// Properties maps property/method names to their metadata.
	Properties map[string]Property `json:"properties,omitempty"`

	// OwnedBy names the resource type of the instance owner, usually the
	// user type. The $owner role also matches when the checked instance
	// IS the principal (OwnedBy == Name).
	OwnedBy string `json:"owned_by,omitempty"`
}

// MethodNames returns the given property name plus its registered
// aliases, in declaration order with the property name last.
func (d *Descriptor) MethodNames(property string) []string {
	if d == nil || property == "" || property == sec.All {
		return nil
	}
	p, ok := d.Properties[property]
	if !ok {
		return []string{property}
	}
	names := make([]string, 0, len(p.Aliases)+1)
	names = append(names, p.Aliases...)
	return append(names, property)
}

// Registry is a thread-safe collection of descriptors keyed by name.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{descriptors: make(map[string]*Descriptor)}
}

// Register adds a descriptor. Registering a name twice is an error.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil || d.Name == "" {
		return fmt.Errorf("resource: descriptor requires a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.descriptors[d.Name]; exists {
		return fmt.Errorf("resource: %q already registered", d.Name)
	}
	r.descriptors[d.Name] = d
	return nil
}

// MustRegister is like Register but panics on error. Use at startup.
func (r *Registry) MustRegister(d *Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Lookup returns the descriptor for a resource type name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[name]
	return d, ok
}

// Names returns the registered resource type names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.descriptors))
	for n := range r.descriptors {
		names = append(names, n)
	}
	return names
}
