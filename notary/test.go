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

package notary

import (
	"time"

	"github.com/in-toto/go-stamp/cryptoutil"
)

const KindTest = "test"

func init() {
	registerSignature(KindTest, decodeTestSignature)
}

// TestSignature is an unauthenticated attestation. It carries no cryptographic
// payload and proves nothing; it exists so proofs can be assembled and exchanged
// before a real notary's signature is available, and for tests.
type TestSignature struct {
	digest   cryptoutil.Digest
	identity string
	when     time.Time
}

// NewTestSignature builds a test signature over digest. Times are truncated to
// whole seconds so a signature survives a round trip through its primitive form
// regardless of the wall clock's resolution.
func NewTestSignature(digest cryptoutil.Digest, identity string, when time.Time) *TestSignature {
	return &TestSignature{digest: digest, identity: identity, when: when.Truncate(time.Second).UTC()}
}

func (s *TestSignature) Kind() string { return KindTest }
func (s *TestSignature) Digest() cryptoutil.Digest { return s.digest }
func (s *TestSignature) Identity() string { return s.identity }
func (s *TestSignature) Time() time.Time { return s.when }

func (s *TestSignature) Equal(other Signature) bool {
	otherTest, ok := other.(*TestSignature)
	if !ok {
		return false
	}

	return s.digest == otherTest.digest && s.identity == otherTest.identity && s.when.Equal(otherTest.when)
}

func (s *TestSignature) ToPrimitive(stack *cryptoutil.DigestStack) Primitive {
	return Primitive{
		Kind:     KindTest,
		Digest:   stack.EmitValue(s.digest),
		Identity: s.identity,
		Time:     s.when,
	}
}

func decodeTestSignature(p Primitive, stack *cryptoutil.DigestStack) (Signature, error) {
	digest, err := stack.ResolveValue(p.Digest)
	if err != nil {
		return nil, err
	}

	return NewTestSignature(digest, p.Identity, p.Time), nil
}
