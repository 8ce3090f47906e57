// Copyright 2023 The Stamp Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package registry

import (
	"fmt"
	"sort"
)

// Registry maps the kind tags that appear in serialized proofs to the decoders
// that reconstruct the corresponding entity. Operations and signatures each keep
// one; the tags are part of the wire format.
type Registry[T any] struct {
	entriesByKind map[string]Entry[T]
}

// FactoryFunc creates an instantiation of the entity registered for a kind.
type FactoryFunc[T any] func() T

// Entry describes a registered kind.
type Entry[T any] struct {
	Kind    string
	Factory FactoryFunc[T]
}

// New returns an empty Registry.
func New[T any]() Registry[T] {
	return Registry[T]{entriesByKind: make(map[string]Entry[T])}
}

// Register adds a kind to the registry, replacing any previous registration for
// the same tag.
func (r Registry[T]) Register(kind string, factory FactoryFunc[T]) Entry[T] {
	entry := Entry[T]{Kind: kind, Factory: factory}
	r.entriesByKind[kind] = entry
	return entry
}

// Entry returns the registration for a kind tag. The boolean return value is false
// if the kind is unknown.
func (r Registry[T]) Entry(kind string) (Entry[T], bool) {
	entry, ok := r.entriesByKind[kind]
	return entry, ok
}

// NewEntity creates a fresh entity of the named kind.
func (r Registry[T]) NewEntity(kind string) (T, error) {
	var result T
	entry, ok := r.entriesByKind[kind]
	if !ok {
		return result, fmt.Errorf("could not find entry with kind %v", kind)
	}

	return entry.Factory(), nil
}

// AllKinds returns every registered kind tag, sorted.
func (r Registry[T]) AllKinds() []string {
	kinds := make([]string, 0, len(r.entriesByKind))
	for kind := range r.entriesByKind {
		kinds = append(kinds, kind)
	}

	sort.Strings(kinds)
	return kinds
}
