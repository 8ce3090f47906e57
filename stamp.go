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

// Package stamp builds and verifies timestamp proofs: structures that bind a
// document to a set of digests, link those digests through a DAG of
// hash-combination ops to digests attested by notaries, and serialize the whole
// proof into a compact canonical form.
package stamp

import (
	"fmt"

	"github.com/in-toto/go-stamp/cryptoutil"
	"github.com/in-toto/go-stamp/dag"
	"github.com/in-toto/go-stamp/notary"
)

type ErrInconsistentDigest struct {
	Algorithm string
}

func (e ErrInconsistentDigest) Error() string {
	return fmt.Sprintf("recomputed %v digest differs from the recorded one", e.Algorithm)
}

type ErrNoDataSource struct{}

func (e ErrNoDataSource) Error() string {
	return "no data source available to digest"
}

type ErrUnanchoredSignature struct {
	Signature notary.Signature
}

func (e ErrUnanchoredSignature) Error() string {
	return fmt.Sprintf("no path from the source digests to the digest attested by %v (%v)", e.Signature.Identity(), e.Signature.Digest().Hex())
}

// Timestamp is the proof aggregate: the document's digests keyed by algorithm,
// the proof DAG connecting them to notarized digests, and the collected
// signatures. A Timestamp is safe for concurrent read-only use once built;
// mutation requires exclusive access.
type Timestamp struct {
	Digests    cryptoutil.DigestSet
	Dag        *dag.Dag
	Signatures []notary.Signature

	source DataSource
}

type Option func(*Timestamp)

// WithDataSource attaches the readable document the timestamp's digests are
// computed from.
func WithDataSource(source DataSource) Option {
	return func(t *Timestamp) {
		t.source = source
	}
}

// WithDigests seeds the timestamp with already computed source digests.
func WithDigests(digests cryptoutil.DigestSet) Option {
	return func(t *Timestamp) {
		for algorithm, digest := range digests {
			t.Digests[algorithm] = digest
		}
	}
}

// WithDag sets the timestamp's proof DAG.
func WithDag(d *dag.Dag) Option {
	return func(t *Timestamp) {
		t.Dag = d
	}
}

// WithSignatures adds signatures to the timestamp, deduplicating by content.
func WithSignatures(sigs ...notary.Signature) Option {
	return func(t *Timestamp) {
		for _, sig := range sigs {
			t.AddSignature(sig)
		}
	}
}

// New creates a Timestamp with an empty digest set and proof DAG.
func New(opts ...Option) *Timestamp {
	emptyDag, _ := dag.New()
	t := &Timestamp{
		Digests: cryptoutil.DigestSet{},
		Dag:     emptyDag,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// AddAlgorithms digests the data source under the union of the requested and the
// already recorded algorithms, in a single streaming pass. New algorithms record
// their digest; already recorded algorithms must reproduce theirs exactly or the
// call fails with ErrInconsistentDigest. A mismatch is always surfaced, never
// repaired: a differing digest means the data changed out from under the proof.
func (t *Timestamp) AddAlgorithms(algorithms ...string) error {
	want := map[string]struct{}{}
	for algorithm := range t.Digests {
		want[algorithm] = struct{}{}
	}

	for _, algorithm := range algorithms {
		want[algorithm] = struct{}{}
	}

	if len(want) == 0 {
		return nil
	}

	all := make([]string, 0, len(want))
	for algorithm := range want {
		all = append(all, algorithm)
	}

	if t.source == nil {
		return ErrNoDataSource{}
	}

	data, err := t.source.Open()
	if err != nil {
		return fmt.Errorf("failed to open data source: %w", err)
	}

	defer data.Close()
	computed, err := cryptoutil.CalculateDigestSet(data, all)
	if err != nil {
		return err
	}

	for algorithm, digest := range computed {
		existing, ok := t.Digests[algorithm]
		if !ok {
			t.Digests[algorithm] = digest
			continue
		}

		if existing != digest {
			return ErrInconsistentDigest{Algorithm: algorithm}
		}
	}

	return nil
}

// VerifyData re-digests the data source under every recorded algorithm and fails
// if any stored digest no longer matches the data.
func (t *Timestamp) VerifyData() error {
	return t.AddAlgorithms()
}

// VerifyConsistency proves every signature is anchored to the document: each
// signature's attested digest must lie in the descendant closure of the source
// digests over the proof DAG. The closure is computed once and shared across all
// signature checks.
func (t *Timestamp) VerifyConsistency() error {
	closure := t.Dag.Descendants(t.Digests.SortedDigests())
	for _, sig := range t.Signatures {
		if _, ok := closure[sig.Digest()]; !ok {
			return ErrUnanchoredSignature{Signature: sig}
		}
	}

	return nil
}

// AddSignature adds a signature to the timestamp. Signatures form a set: adding
// one equal in content to an existing signature is a no-op.
func (t *Timestamp) AddSignature(sig notary.Signature) {
	for _, existing := range t.Signatures {
		if existing.Equal(sig) {
			return
		}
	}

	t.Signatures = append(t.Signatures, sig)
}

// Equal reports structural equality: same source digests, same op set, and same
// signature set, regardless of insertion order.
func (t *Timestamp) Equal(other *Timestamp) bool {
	if !t.Digests.Equal(other.Digests) || !t.Dag.Equal(other.Dag) {
		return false
	}

	if len(t.Signatures) != len(other.Signatures) {
		return false
	}

	for _, sig := range t.Signatures {
		found := false
		for _, otherSig := range other.Signatures {
			if sig.Equal(otherSig) {
				found = true
				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}
