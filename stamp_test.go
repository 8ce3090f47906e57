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
	"crypto/sha256"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/in-toto/go-stamp/cryptoutil"
	"github.com/in-toto/go-stamp/dag"
	"github.com/in-toto/go-stamp/notary"
)

// swappableSource lets a test change the data out from under a timestamp.
type swappableSource struct {
	data []byte
}

func (s *swappableSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func TestAddAlgorithmsRecordsDigests(t *testing.T) {
	data := []byte("the document being timestamped")
	ts := New(WithDataSource(BytesSource(data)))
	require.NoError(t, ts.AddAlgorithms("sha256", "sha512"))
	require.Len(t, ts.Digests, 2)

	expected := sha256.Sum256(data)
	assert.Equal(t, cryptoutil.Digest(expected[:]), ts.Digests["sha256"])
}

func TestAddAlgorithmsIsIdempotent(t *testing.T) {
	ts := New(WithDataSource(BytesSource([]byte("data"))))
	require.NoError(t, ts.AddAlgorithms("sha256"))
	recorded := ts.Digests["sha256"]

	require.NoError(t, ts.AddAlgorithms("sha256"))
	require.NoError(t, ts.AddAlgorithms())
	assert.Len(t, ts.Digests, 1)
	assert.Equal(t, recorded, ts.Digests["sha256"])
}

func TestAddAlgorithmsUnionsWithExisting(t *testing.T) {
	ts := New(WithDataSource(BytesSource([]byte("data"))))
	require.NoError(t, ts.AddAlgorithms("sha256"))
	require.NoError(t, ts.AddAlgorithms("blake3"))
	// the second call re-verified sha256 while adding blake3
	assert.Len(t, ts.Digests, 2)
}

func TestAddAlgorithmsDetectsMismatch(t *testing.T) {
	source := &swappableSource{data: []byte("original data")}
	ts := New(WithDataSource(source))
	require.NoError(t, ts.AddAlgorithms("sha256", "sha512"))

	source.data = []byte("substituted data")
	err := ts.VerifyData()
	inconsistent := ErrInconsistentDigest{}
	require.ErrorAs(t, err, &inconsistent)
	assert.Contains(t, []string{"sha256", "sha512"}, inconsistent.Algorithm)
}

func TestVerifyDataPassesOnUnchangedData(t *testing.T) {
	ts := New(WithDataSource(BytesSource([]byte("data"))))
	require.NoError(t, ts.AddAlgorithms("sha256"))
	require.NoError(t, ts.VerifyData())
}

func TestAddAlgorithmsRequiresDataSource(t *testing.T) {
	ts := New()
	err := ts.AddAlgorithms("sha256")
	noSource := ErrNoDataSource{}
	require.ErrorAs(t, err, &noSource)

	// nothing recorded and nothing requested means nothing to digest
	require.NoError(t, New().AddAlgorithms())

	// re-verifying recorded digests needs the source too
	ts = New(WithDigests(cryptoutil.DigestSet{"sha256": cryptoutil.Digest("xxxx")}))
	require.ErrorAs(t, ts.VerifyData(), &noSource)
}

func TestAddAlgorithmsUnknownAlgorithm(t *testing.T) {
	ts := New(WithDataSource(BytesSource([]byte("data"))))
	unknown := cryptoutil.ErrUnknownAlgorithm{}
	require.ErrorAs(t, ts.AddAlgorithms("md6"), &unknown)
}

func TestVerifyConsistency(t *testing.T) {
	ts := New(WithDataSource(BytesSource([]byte("data"))))
	require.NoError(t, ts.AddAlgorithms("sha256"))
	d0 := ts.Digests["sha256"]

	op1, err := dag.NewHashOp("sha256", d0)
	require.NoError(t, err)
	op2, err := dag.NewHashOp("sha256", op1.Digest())
	require.NoError(t, err)
	require.NoError(t, ts.Dag.Add(op1))
	require.NoError(t, ts.Dag.Add(op2))

	anchored := notary.NewTestSignature(op2.Digest(), "notary", time.Unix(1700000000, 0))
	ts.AddSignature(anchored)
	require.NoError(t, ts.VerifyConsistency())

	sum := sha256.Sum256([]byte("not in the dag"))
	unanchored := notary.NewTestSignature(cryptoutil.Digest(sum[:]), "rogue", time.Unix(1700000000, 0))
	ts.AddSignature(unanchored)

	err = ts.VerifyConsistency()
	unanchoredErr := ErrUnanchoredSignature{}
	require.ErrorAs(t, err, &unanchoredErr)
	assert.Equal(t, "rogue", unanchoredErr.Signature.Identity())
}

func TestAddSignatureDeduplicates(t *testing.T) {
	ts := New()
	sig := notary.NewTestSignature(cryptoutil.Digest("dddd"), "notary", time.Unix(1700000000, 0))
	same := notary.NewTestSignature(cryptoutil.Digest("dddd"), "notary", time.Unix(1700000000, 0))
	ts.AddSignature(sig)
	ts.AddSignature(same)
	assert.Len(t, ts.Signatures, 1)
}

// buildTestTimestamp assembles a timestamp with two source digests, a small DAG
// with a shared digest, and two signatures. reverse flips every insertion order.
func buildTestTimestamp(t *testing.T, reverse bool) *Timestamp {
	t.Helper()
	ts := New(WithDataSource(BytesSource([]byte("the document"))))
	algorithms := []string{"sha256", "sha512"}
	if reverse {
		algorithms = []string{"sha512", "sha256"}
	}

	require.NoError(t, ts.AddAlgorithms(algorithms...))
	d0 := ts.Digests["sha256"]

	op1, err := dag.NewHashOp("sha256", d0)
	require.NoError(t, err)
	op2, err := dag.NewPrependOp("sha256", []byte{0xaa}, op1.Digest())
	require.NoError(t, err)
	op3, err := dag.NewAppendOp("sha256", []byte{0xbb}, op1.Digest())
	require.NoError(t, err)

	ops := []dag.Op{op1, op2, op3}
	if reverse {
		ops = []dag.Op{op3, op2, op1}
	}

	for _, op := range ops {
		require.NoError(t, ts.Dag.Add(op))
	}

	sigs := []notary.Signature{
		notary.NewTestSignature(op2.Digest(), "alpha.example.com", time.Unix(1700000000, 0)),
		notary.NewTestSignature(op3.Digest(), "beta.example.com", time.Unix(1700000100, 0)),
	}
	if reverse {
		sigs[0], sigs[1] = sigs[1], sigs[0]
	}

	for _, sig := range sigs {
		ts.AddSignature(sig)
	}

	return ts
}

func TestRoundTrip(t *testing.T) {
	ts := buildTestTimestamp(t, false)
	for name, opts := range map[string][]PrimitiveOption{
		"compressed":      {},
		"uncompressed":    {WithCompression(false)},
		"with op digests": {WithOpDigests(true)},
	} {
		restored, err := FromPrimitives(ts.ToPrimitives(opts...))
		require.NoError(t, err, name)
		assert.True(t, ts.Equal(restored), name)
		assert.NoError(t, restored.VerifyConsistency(), name)
	}
}

func TestRoundTripThroughJSON(t *testing.T) {
	ts := buildTestTimestamp(t, false)
	encoded, err := json.Marshal(ts.ToPrimitives())
	require.NoError(t, err)

	var prims Primitives
	require.NoError(t, json.Unmarshal(encoded, &prims))

	restored, err := FromPrimitives(prims)
	require.NoError(t, err)
	assert.True(t, ts.Equal(restored))
}

func TestSerializationIsDeterministic(t *testing.T) {
	forward := buildTestTimestamp(t, false)
	backward := buildTestTimestamp(t, true)
	require.True(t, forward.Equal(backward))

	forwardJSON, err := json.Marshal(forward.ToPrimitives())
	require.NoError(t, err)
	backwardJSON, err := json.Marshal(backward.ToPrimitives())
	require.NoError(t, err)
	assert.Equal(t, forwardJSON, backwardJSON)
}

func TestStackCompressionSharesDigests(t *testing.T) {
	ts := buildTestTimestamp(t, false)
	prims := ts.ToPrimitives()

	// op1 consumes the sha256 source digest, which seeds the stack: its input
	// must be a backreference, and the digest's bytes must appear exactly once
	// in the whole serialized proof
	d0 := ts.Digests["sha256"]
	refs := 0
	for _, op := range prims.Ops {
		for _, input := range op.Inputs {
			assert.NotEqual(t, d0.Hex(), input.Hex)
			if input.Ref != nil {
				refs++
			}
		}
	}

	assert.Positive(t, refs)
	encoded, err := json.Marshal(prims)
	require.NoError(t, err)
	assert.Equal(t, 1, bytes.Count(encoded, []byte(d0.Hex())))
}

func TestSharedInputUsesSamePosition(t *testing.T) {
	// two sibling ops consume the same source digest; both must reference the
	// same stack position
	ts := New(WithDataSource(BytesSource([]byte("shared"))))
	require.NoError(t, ts.AddAlgorithms("sha256"))
	d0 := ts.Digests["sha256"]

	left, err := dag.NewPrependOp("sha256", []byte{0x01}, d0)
	require.NoError(t, err)
	right, err := dag.NewAppendOp("sha256", []byte{0x02}, d0)
	require.NoError(t, err)
	require.NoError(t, ts.Dag.Add(left))
	require.NoError(t, ts.Dag.Add(right))

	prims := ts.ToPrimitives()
	require.Len(t, prims.Ops, 2)
	require.NotNil(t, prims.Ops[0].Inputs[0].Ref)
	require.NotNil(t, prims.Ops[1].Inputs[0].Ref)
	assert.Equal(t, *prims.Ops[0].Inputs[0].Ref, *prims.Ops[1].Inputs[0].Ref)
}

func TestUncompressedSerializationSpellsDigestsOut(t *testing.T) {
	ts := buildTestTimestamp(t, false)
	prims := ts.ToPrimitives(WithCompression(false))
	for _, op := range prims.Ops {
		for _, input := range op.Inputs {
			assert.Nil(t, input.Ref)
			assert.NotEmpty(t, input.Hex)
		}
	}

	for _, sig := range prims.Signatures {
		assert.Nil(t, sig.Digest.Ref)
	}
}

func TestFromPrimitivesRejectsBadStackReference(t *testing.T) {
	ts := New(WithDataSource(BytesSource([]byte("data"))))
	require.NoError(t, ts.AddAlgorithms("sha256"))
	prims := ts.ToPrimitives()

	ref := 5
	prims.Ops = append(prims.Ops, dag.Primitive{
		Kind:      dag.KindHash,
		Algorithm: "sha256",
		Inputs:    []cryptoutil.StackValue{{Ref: &ref}},
	})

	malformed := cryptoutil.ErrMalformedProof{}
	_, err := FromPrimitives(prims)
	require.ErrorAs(t, err, &malformed)
}

func TestFromPrimitivesRejectsBadHex(t *testing.T) {
	malformed := cryptoutil.ErrMalformedProof{}
	_, err := FromPrimitives(Primitives{Digests: map[string]string{"sha256": "zz"}})
	require.ErrorAs(t, err, &malformed)
}

func TestFromPrimitivesRejectsUnknownOpKind(t *testing.T) {
	malformed := cryptoutil.ErrMalformedProof{}
	_, err := FromPrimitives(Primitives{
		Digests: map[string]string{"sha256": "00"},
		Ops:     []dag.Primitive{{Kind: "xor"}},
	})
	require.ErrorAs(t, err, &malformed)
}

func TestPrimitivesSchema(t *testing.T) {
	require.NotNil(t, Primitives{}.Schema())
}
