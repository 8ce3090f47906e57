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

package cryptoutil

import (
	"fmt"
)

type ErrMalformedProof struct {
	Reason string
}

func (e ErrMalformedProof) Error() string {
	return fmt.Sprintf("malformed proof: %v", e.Reason)
}

// DigestStack assigns each digest a dense, 0-based position in order of first
// appearance. Serialized operations and signatures reference digests already on the
// stack by position instead of repeating their bytes.
type DigestStack struct {
	digests   []Digest
	positions map[Digest]int
}

func NewDigestStack() *DigestStack {
	return &DigestStack{positions: map[Digest]int{}}
}

// Len returns the number of digests on the stack.
func (s *DigestStack) Len() int {
	return len(s.digests)
}

// Push appends a digest to the stack and returns its position. Pushing a digest
// already on the stack keeps its original position.
func (s *DigestStack) Push(d Digest) int {
	if pos, ok := s.positions[d]; ok {
		return pos
	}

	pos := len(s.digests)
	s.digests = append(s.digests, d)
	s.positions[d] = pos
	return pos
}

// Position returns the stack position of d, if it has been pushed.
func (s *DigestStack) Position(d Digest) (int, bool) {
	pos, ok := s.positions[d]
	return pos, ok
}

// At returns the digest at position i. Positions at or beyond the current top are
// forward references and are rejected.
func (s *DigestStack) At(i int) (Digest, error) {
	if i < 0 || i >= len(s.digests) {
		return "", ErrMalformedProof{Reason: fmt.Sprintf("digest stack reference %v out of range (stack size %v)", i, len(s.digests))}
	}

	return s.digests[i], nil
}

// StackValue is the wire form of a single digest: either a backreference to a
// stack position or the digest's raw bytes in hex. Exactly one field is set.
type StackValue struct {
	Ref *int   `json:"ref,omitempty" jsonschema:"title=Stack Reference,description=0-based position of the digest on the shared digest stack"`
	Hex string `json:"hex,omitempty" jsonschema:"title=Hex Digest,description=Hex-encoded digest bytes"`
}

// EmitValue encodes d for the wire, preferring a stack reference when d is already
// on the stack.
func (s *DigestStack) EmitValue(d Digest) StackValue {
	if pos, ok := s.positions[d]; ok {
		ref := pos
		return StackValue{Ref: &ref}
	}

	return StackValue{Hex: d.Hex()}
}

// ResolveValue decodes a StackValue back to a digest against the current stack.
func (s *DigestStack) ResolveValue(v StackValue) (Digest, error) {
	switch {
	case v.Ref != nil && v.Hex != "":
		return "", ErrMalformedProof{Reason: "digest has both a stack reference and raw bytes"}
	case v.Ref != nil:
		return s.At(*v.Ref)
	case v.Hex != "":
		d, err := DigestFromHex(v.Hex)
		if err != nil {
			return "", ErrMalformedProof{Reason: fmt.Sprintf("bad hex digest: %v", err)}
		}

		return d, nil
	default:
		return "", ErrMalformedProof{Reason: "digest has neither a stack reference nor raw bytes"}
	}
}
