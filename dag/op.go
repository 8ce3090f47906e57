// Copyright 2022 The Stamp Contributors
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

package dag

import (
	"fmt"
	"strings"

	"github.com/in-toto/go-stamp/cryptoutil"
	"github.com/in-toto/go-stamp/registry"
)

// Op is a single deterministic hash-combination step: a node of the proof DAG.
// An op's output digest is a pure function of its kind, parameters, and inputs,
// computed once at construction.
type Op interface {
	// Kind is the tag that identifies the op variant on the wire.
	Kind() string
	// Inputs returns the digests the op consumes, in declaration order.
	Inputs() []cryptoutil.Digest
	// Digest returns the op's output digest.
	Digest() cryptoutil.Digest
	// Compare orders ops by their canonical key. See CompareOps.
	Compare(other Op) int
	// ToPrimitive serializes the op against the shared digest stack. Inputs
	// already on the stack are emitted as backreferences. The output digest is
	// only included when includeDigest is set; it is otherwise recomputed during
	// deserialization.
	ToPrimitive(stack *cryptoutil.DigestStack, includeDigest bool) Primitive
}

// Primitive is the wire form of a single op.
type Primitive struct {
	Kind      string                  `json:"kind" jsonschema:"title=Kind,description=Op variant tag"`
	Algorithm string                  `json:"algorithm" jsonschema:"title=Algorithm,description=Hash algorithm name"`
	Inputs    []cryptoutil.StackValue `json:"inputs" jsonschema:"title=Inputs,description=Input digests as stack references or raw hex"`
	Data      string                  `json:"data,omitempty" jsonschema:"title=Data,description=Hex-encoded byte parameter for prepend and append ops"`
	Digest    string                  `json:"digest,omitempty" jsonschema:"title=Digest,description=Hex-encoded output digest when included"`
}

type decodeFunc func(p Primitive, stack *cryptoutil.DigestStack) (Op, error)

var opsByKind = registry.New[decodeFunc]()

func registerOp(kind string, decode decodeFunc) {
	opsByKind.Register(kind, func() decodeFunc { return decode })
}

// FromPrimitive reconstructs an op from its wire form, resolving stack references
// against the shared digest stack. When the primitive carries an output digest it
// must match the recomputed one.
func FromPrimitive(p Primitive, stack *cryptoutil.DigestStack) (Op, error) {
	decode, err := opsByKind.NewEntity(p.Kind)
	if err != nil {
		return nil, cryptoutil.ErrMalformedProof{Reason: fmt.Sprintf("unknown op kind %q", p.Kind)}
	}

	op, err := decode(p, stack)
	if err != nil {
		return nil, err
	}

	if p.Digest != "" {
		included, err := cryptoutil.DigestFromHex(p.Digest)
		if err != nil {
			return nil, cryptoutil.ErrMalformedProof{Reason: fmt.Sprintf("bad op digest: %v", err)}
		}

		if included != op.Digest() {
			return nil, cryptoutil.ErrMalformedProof{Reason: fmt.Sprintf("op digest %v does not match recomputed digest %v", included.Hex(), op.Digest().Hex())}
		}
	}

	return op, nil
}

// CompareOps is the canonical total order over ops used when serializing:
// output digest bytes first, then kind, then the inputs pairwise. It is part of
// the wire format contract; two serializers of the same logical proof must agree
// on it to produce identical bytes.
func CompareOps(a, b Op) int {
	if c := a.Digest().Compare(b.Digest()); c != 0 {
		return c
	}

	if c := strings.Compare(a.Kind(), b.Kind()); c != 0 {
		return c
	}

	aInputs, bInputs := a.Inputs(), b.Inputs()
	if len(aInputs) != len(bInputs) {
		if len(aInputs) < len(bInputs) {
			return -1
		}
		return 1
	}

	for i := range aInputs {
		if c := aInputs[i].Compare(bInputs[i]); c != 0 {
			return c
		}
	}

	return 0
}

func resolveInputs(p Primitive, stack *cryptoutil.DigestStack) ([]cryptoutil.Digest, error) {
	inputs := make([]cryptoutil.Digest, 0, len(p.Inputs))
	for _, value := range p.Inputs {
		input, err := stack.ResolveValue(value)
		if err != nil {
			return nil, err
		}

		inputs = append(inputs, input)
	}

	return inputs, nil
}

func emitInputs(inputs []cryptoutil.Digest, stack *cryptoutil.DigestStack) []cryptoutil.StackValue {
	values := make([]cryptoutil.StackValue, 0, len(inputs))
	for _, input := range inputs {
		values = append(values, stack.EmitValue(input))
	}

	return values
}
