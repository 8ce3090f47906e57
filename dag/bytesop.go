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
	"encoding/hex"
	"fmt"

	"github.com/in-toto/go-stamp/cryptoutil"
)

const (
	KindPrepend = "prepend"
	KindAppend  = "append"
)

func init() {
	registerOp(KindPrepend, func(p Primitive, stack *cryptoutil.DigestStack) (Op, error) {
		return decodeBytesOp(p, stack, KindPrepend)
	})
	registerOp(KindAppend, func(p Primitive, stack *cryptoutil.DigestStack) (Op, error) {
		return decodeBytesOp(p, stack, KindAppend)
	})
}

// BytesOp hashes its single input digest with a fixed byte string attached to one
// side: prepend ops digest data || input, append ops digest input || data. Calendar
// servers use these to mix nonces and sibling digests into an aggregation.
type BytesOp struct {
	kind      string
	algorithm string
	data      []byte
	input     cryptoutil.Digest
	digest    cryptoutil.Digest
}

// NewPrependOp builds an op whose output is the digest of data || input.
func NewPrependOp(algorithm string, data []byte, input cryptoutil.Digest) (*BytesOp, error) {
	return newBytesOp(KindPrepend, algorithm, data, input)
}

// NewAppendOp builds an op whose output is the digest of input || data.
func NewAppendOp(algorithm string, data []byte, input cryptoutil.Digest) (*BytesOp, error) {
	return newBytesOp(KindAppend, algorithm, data, input)
}

func newBytesOp(kind, algorithm string, data []byte, input cryptoutil.Digest) (*BytesOp, error) {
	hasher, err := cryptoutil.HashByName(algorithm)
	if err != nil {
		return nil, err
	}

	op := &BytesOp{
		kind:      kind,
		algorithm: algorithm,
		data:      append([]byte{}, data...),
		input:     input,
	}

	if kind == KindPrepend {
		hasher.Write(op.data)
		hasher.Write(input.Bytes())
	} else {
		hasher.Write(input.Bytes())
		hasher.Write(op.data)
	}

	op.digest = cryptoutil.Digest(hasher.Sum(nil))
	return op, nil
}

func (op *BytesOp) Kind() string { return op.kind }
func (op *BytesOp) Algorithm() string { return op.algorithm }
func (op *BytesOp) Data() []byte { return append([]byte{}, op.data...) }
func (op *BytesOp) Inputs() []cryptoutil.Digest { return []cryptoutil.Digest{op.input} }
func (op *BytesOp) Digest() cryptoutil.Digest { return op.digest }
func (op *BytesOp) Compare(other Op) int { return CompareOps(op, other) }

func (op *BytesOp) ToPrimitive(stack *cryptoutil.DigestStack, includeDigest bool) Primitive {
	p := Primitive{
		Kind:      op.kind,
		Algorithm: op.algorithm,
		Inputs:    emitInputs(op.Inputs(), stack),
		Data:      hex.EncodeToString(op.data),
	}

	if includeDigest {
		p.Digest = op.digest.Hex()
	}

	return p
}

func decodeBytesOp(p Primitive, stack *cryptoutil.DigestStack, kind string) (Op, error) {
	if len(p.Inputs) != 1 {
		return nil, cryptoutil.ErrMalformedProof{Reason: fmt.Sprintf("%v op requires exactly one input, got %v", kind, len(p.Inputs))}
	}

	input, err := stack.ResolveValue(p.Inputs[0])
	if err != nil {
		return nil, err
	}

	data, err := hex.DecodeString(p.Data)
	if err != nil {
		return nil, cryptoutil.ErrMalformedProof{Reason: fmt.Sprintf("bad %v op data: %v", kind, err)}
	}

	op, err := newBytesOp(kind, p.Algorithm, data, input)
	if err != nil {
		return nil, cryptoutil.ErrMalformedProof{Reason: fmt.Sprintf("bad %v op: %v", kind, err)}
	}

	return op, nil
}
