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
	"bytes"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/digitorus/timestamp"

	"github.com/in-toto/go-stamp/cryptoutil"
)

const KindRFC3161 = "rfc3161"

func init() {
	registerSignature(KindRFC3161, decodeRFC3161Signature)
}

type ErrVerifyFailed struct {
	Reason string
}

func (e ErrVerifyFailed) Error() string {
	return fmt.Sprintf("timestamp token verification failed: %v", e.Reason)
}

// RFC3161Signature is a Time-Stamp Authority's token over a digest, carried as the
// DER-encoded TimeStampResp the TSA returned. The token is the source of truth;
// the attested digest and time are parsed out of it.
type RFC3161Signature struct {
	token    []byte
	digest   cryptoutil.Digest
	identity string
	when     time.Time
	certs    []*x509.Certificate
}

// NewRFC3161Signature parses a DER-encoded timestamp response into a signature.
func NewRFC3161Signature(token []byte) (*RFC3161Signature, error) {
	parsed, err := timestamp.ParseResponse(token)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp response: %w", err)
	}

	sig := &RFC3161Signature{
		token:    append([]byte{}, token...),
		digest:   cryptoutil.Digest(parsed.HashedMessage),
		when:     parsed.Time,
		identity: KindRFC3161,
		certs:    parsed.Certificates,
	}

	if len(parsed.Certificates) > 0 {
		sig.identity = parsed.Certificates[0].Subject.String()
	}

	return sig, nil
}

func (s *RFC3161Signature) Kind() string { return KindRFC3161 }
func (s *RFC3161Signature) Digest() cryptoutil.Digest { return s.digest }
func (s *RFC3161Signature) Identity() string { return s.identity }
func (s *RFC3161Signature) Time() time.Time { return s.when }

// Token returns the DER-encoded timestamp response.
func (s *RFC3161Signature) Token() []byte {
	return append([]byte{}, s.token...)
}

func (s *RFC3161Signature) Equal(other Signature) bool {
	otherSig, ok := other.(*RFC3161Signature)
	if !ok {
		return false
	}

	return bytes.Equal(s.token, otherSig.token)
}

// Verify checks the token's signing certificate chains to one of roots. The
// structural binding between token and digest was already established at parse
// time, so only the trust decision is left to the caller.
func (s *RFC3161Signature) Verify(roots *x509.CertPool) error {
	if len(s.certs) == 0 {
		return ErrVerifyFailed{Reason: "token carries no signing certificate"}
	}

	intermediates := x509.NewCertPool()
	for _, cert := range s.certs[1:] {
		intermediates.AddCert(cert)
	}

	opts := x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageTimeStamping},
		CurrentTime:   s.when,
	}

	if _, err := s.certs[0].Verify(opts); err != nil {
		return ErrVerifyFailed{Reason: err.Error()}
	}

	return nil
}

func (s *RFC3161Signature) ToPrimitive(stack *cryptoutil.DigestStack) Primitive {
	return Primitive{
		Kind:     KindRFC3161,
		Digest:   stack.EmitValue(s.digest),
		Identity: s.identity,
		Time:     s.when,
		Token:    s.Token(),
	}
}

func decodeRFC3161Signature(p Primitive, stack *cryptoutil.DigestStack) (Signature, error) {
	digest, err := stack.ResolveValue(p.Digest)
	if err != nil {
		return nil, err
	}

	sig, err := NewRFC3161Signature(p.Token)
	if err != nil {
		return nil, cryptoutil.ErrMalformedProof{Reason: fmt.Sprintf("bad rfc3161 token: %v", err)}
	}

	if sig.digest != digest {
		return nil, cryptoutil.ErrMalformedProof{Reason: "rfc3161 token does not attest the serialized digest"}
	}

	return sig, nil
}
