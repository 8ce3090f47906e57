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
	"fmt"
	"time"

	"github.com/in-toto/go-stamp/cryptoutil"
	"github.com/in-toto/go-stamp/registry"
)

// Signature is a notary's attestation that a digest existed at a point in time.
// For the attestation to mean anything the digest must be reachable from a
// timestamp's source digests through its proof DAG; that check belongs to the
// stamp package.
type Signature interface {
	// Kind is the tag that identifies the signature variant on the wire.
	Kind() string
	// Digest returns the digest the notary attested to.
	Digest() cryptoutil.Digest
	// Identity names the notary in a form suitable for error messages and logs.
	Identity() string
	// Time returns the time the notary claims the digest existed.
	Time() time.Time
	// Equal reports whether other is the same attestation, content for content.
	Equal(other Signature) bool
	// ToPrimitive serializes the signature against the shared digest stack.
	ToPrimitive(stack *cryptoutil.DigestStack) Primitive
}

// Primitive is the wire form of a single signature.
type Primitive struct {
	Kind     string                `json:"kind" jsonschema:"title=Kind,description=Signature variant tag"`
	Digest   cryptoutil.StackValue `json:"digest" jsonschema:"title=Digest,description=Attested digest as a stack reference or raw hex"`
	Identity string                `json:"identity,omitempty" jsonschema:"title=Identity,description=Notary identity"`
	Time     time.Time             `json:"time" jsonschema:"title=Time,description=Claimed attestation time"`
	Token    []byte                `json:"token,omitempty" jsonschema:"title=Token,description=Base64-encoded notary-specific payload"`
}

type decodeFunc func(p Primitive, stack *cryptoutil.DigestStack) (Signature, error)

var signaturesByKind = registry.New[decodeFunc]()

func registerSignature(kind string, decode decodeFunc) {
	signaturesByKind.Register(kind, func() decodeFunc { return decode })
}

// FromPrimitive reconstructs a signature from its wire form, resolving the
// attested digest against the shared digest stack.
func FromPrimitive(p Primitive, stack *cryptoutil.DigestStack) (Signature, error) {
	decode, err := signaturesByKind.NewEntity(p.Kind)
	if err != nil {
		return nil, cryptoutil.ErrMalformedProof{Reason: fmt.Sprintf("unknown signature kind %q", p.Kind)}
	}

	return decode(p, stack)
}
