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

package stamp

import (
	"bytes"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/in-toto/go-stamp/cryptoutil"
	"github.com/in-toto/go-stamp/dag"
	"github.com/in-toto/go-stamp/notary"
)

// Primitives is the wire form of a whole timestamp proof. Source digests are the
// serialization root and always carried as raw hex; ops and signatures share a
// digest stack seeded with the sorted source digests, letting repeated digests be
// emitted as stack positions instead of bytes.
type Primitives struct {
	Digests    map[string]string  `json:"digests" jsonschema:"title=Digests,description=Source digests keyed by hash algorithm name as hex"`
	Ops        []dag.Primitive    `json:"ops" jsonschema:"title=Ops,description=Proof DAG ops in canonical order"`
	Signatures []notary.Primitive `json:"signatures" jsonschema:"title=Signatures,description=Notary signatures over digests in the proof"`
}

// Schema returns the JSON schema of the wire format.
func (p Primitives) Schema() *jsonschema.Schema {
	return jsonschema.Reflect(&p)
}

type serializeOptions struct {
	compress         bool
	includeOpDigests bool
	opOrder          func(a, b dag.Op) int
}

type PrimitiveOption func(*serializeOptions)

// WithCompression controls whether repeated digests are emitted as stack
// backreferences. Compression is on by default; disabling it yields a larger but
// self-describing form with every digest spelled out.
func WithCompression(compress bool) PrimitiveOption {
	return func(so *serializeOptions) {
		so.compress = compress
	}
}

// WithOpDigests controls whether each op's output digest is included in its
// serialized form. Omitted by default: the output is recomputed from the op's
// inputs on deserialization.
func WithOpDigests(include bool) PrimitiveOption {
	return func(so *serializeOptions) {
		so.includeOpDigests = include
	}
}

// WithOpOrder overrides the canonical op order. The order is part of the wire
// contract: serializers must agree on it for byte-identical output. The default
// is dag.CompareOps.
func WithOpOrder(compare func(a, b dag.Op) int) PrimitiveOption {
	return func(so *serializeOptions) {
		so.opOrder = compare
	}
}

// ToPrimitives serializes the timestamp. The output is deterministic: source
// digests seed the stack in sorted byte order, ops follow in the canonical op
// order, and signatures are sorted by content.
func (t *Timestamp) ToPrimitives(opts ...PrimitiveOption) Primitives {
	so := serializeOptions{compress: true, opOrder: dag.CompareOps}
	for _, opt := range opts {
		opt(&so)
	}

	stack := cryptoutil.NewDigestStack()
	if so.compress {
		for _, digest := range t.Digests.SortedDigests() {
			stack.Push(digest)
		}
	}

	ops := t.Dag.Ops()
	sort.Slice(ops, func(i, j int) bool { return so.opOrder(ops[i], ops[j]) < 0 })
	opPrims := make([]dag.Primitive, 0, len(ops))
	for _, op := range ops {
		opPrims = append(opPrims, op.ToPrimitive(stack, so.includeOpDigests))
		if so.compress {
			stack.Push(op.Digest())
		}
	}

	sigs := append([]notary.Signature{}, t.Signatures...)
	sort.Slice(sigs, func(i, j int) bool { return compareSignatures(sigs[i], sigs[j]) < 0 })
	sigPrims := make([]notary.Primitive, 0, len(sigs))
	for _, sig := range sigs {
		sigPrims = append(sigPrims, sig.ToPrimitive(stack))
	}

	digests := make(map[string]string, len(t.Digests))
	for algorithm, digest := range t.Digests {
		digests[algorithm] = digest.Hex()
	}

	return Primitives{Digests: digests, Ops: opPrims, Signatures: sigPrims}
}

// FromPrimitives is the exact inverse of ToPrimitives: it rebuilds the digest
// stack in the same order and reconstructs the proof. Structural violations (bad
// hex, out of range stack references, unknown kind tags) fail with
// cryptoutil.ErrMalformedProof.
func FromPrimitives(p Primitives, opts ...Option) (*Timestamp, error) {
	digests := cryptoutil.DigestSet{}
	for algorithm, hexDigest := range p.Digests {
		digest, err := cryptoutil.DigestFromHex(hexDigest)
		if err != nil {
			return nil, cryptoutil.ErrMalformedProof{Reason: err.Error()}
		}

		digests[algorithm] = digest
	}

	stack := cryptoutil.NewDigestStack()
	for _, digest := range digests.SortedDigests() {
		stack.Push(digest)
	}

	proofDag, _ := dag.New()
	for _, opPrim := range p.Ops {
		op, err := dag.FromPrimitive(opPrim, stack)
		if err != nil {
			return nil, err
		}

		if err := proofDag.Add(op); err != nil {
			return nil, cryptoutil.ErrMalformedProof{Reason: err.Error()}
		}

		stack.Push(op.Digest())
	}

	sigs := make([]notary.Signature, 0, len(p.Signatures))
	for _, sigPrim := range p.Signatures {
		sig, err := notary.FromPrimitive(sigPrim, stack)
		if err != nil {
			return nil, err
		}

		sigs = append(sigs, sig)
	}

	t := New(opts...)
	t.Digests = digests
	t.Dag = proofDag
	for _, sig := range sigs {
		t.AddSignature(sig)
	}

	return t, nil
}

// compareSignatures orders signatures for serialization: by attested digest,
// then kind, then identity, time, and token bytes.
func compareSignatures(a, b notary.Signature) int {
	if c := a.Digest().Compare(b.Digest()); c != 0 {
		return c
	}

	if c := strings.Compare(a.Kind(), b.Kind()); c != 0 {
		return c
	}

	if c := strings.Compare(a.Identity(), b.Identity()); c != 0 {
		return c
	}

	if !a.Time().Equal(b.Time()) {
		if a.Time().Before(b.Time()) {
			return -1
		}
		return 1
	}

	var aToken, bToken []byte
	if ra, ok := a.(*notary.RFC3161Signature); ok {
		aToken = ra.Token()
	}
	if rb, ok := b.(*notary.RFC3161Signature); ok {
		bToken = rb.Token()
	}

	return bytes.Compare(aToken, bToken)
}
