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

	"github.com/in-toto/go-stamp/cryptoutil"
)

const KindHash = "hash"

func init() {
	registerOp(KindHash, decodeHashOp)
}

// HashOp digests the concatenation of its input digests under a named algorithm.
// It is the combining step of the proof DAG: two or more digests in, one out.
type HashOp struct {
	algorithm string
	inputs    []cryptoutil.Digest
	digest    cryptoutil.Digest
}

// NewHashOp builds a HashOp and computes its output digest.
func NewHashOp(algorithm string, inputs ...cryptoutil.Digest) (*HashOp, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("hash op requires at least one input")
	}

	hasher, err := cryptoutil.HashByName(algorithm)
	if err != nil {
		return nil, err
	}

	op := &HashOp{algorithm: algorithm, inputs: append([]cryptoutil.Digest{}, inputs...)}
	for _, input := range op.inputs {
		hasher.Write(input.Bytes())
	}

	op.digest = cryptoutil.Digest(hasher.Sum(nil))
	return op, nil
}

func (op *HashOp) Kind() string { return KindHash }
func (op *HashOp) Algorithm() string { return op.algorithm }
func (op *HashOp) Inputs() []cryptoutil.Digest { return append([]cryptoutil.Digest{}, op.inputs...) }
func (op *HashOp) Digest() cryptoutil.Digest { return op.digest }
func (op *HashOp) Compare(other Op) int { return CompareOps(op, other) }

func (op *HashOp) ToPrimitive(stack *cryptoutil.DigestStack, includeDigest bool) Primitive {
	p := Primitive{
		Kind:      KindHash,
		Algorithm: op.algorithm,
		Inputs:    emitInputs(op.inputs, stack),
	}

	if includeDigest {
		p.Digest = op.digest.Hex()
	}

	return p
}

func decodeHashOp(p Primitive, stack *cryptoutil.DigestStack) (Op, error) {
	inputs, err := resolveInputs(p, stack)
	if err != nil {
		return nil, err
	}

	op, err := NewHashOp(p.Algorithm, inputs...)
	if err != nil {
		return nil, cryptoutil.ErrMalformedProof{Reason: fmt.Sprintf("bad hash op: %v", err)}
	}

	return op, nil
}
