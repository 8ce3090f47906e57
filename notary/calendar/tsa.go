// Copyright 2023 The Stamp Contributors
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

package calendar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/digitorus/timestamp"

	"github.com/in-toto/go-stamp/cryptoutil"
	"github.com/in-toto/go-stamp/log"
	"github.com/in-toto/go-stamp/notary"
)

// TSA requests RFC3161 timestamp tokens over digests from a Time-Stamp Authority.
type TSA struct {
	url string
	hc  *http.Client
}

type TSAOption func(*TSA)

// TSAWithHTTPClient overrides the http.Client used for requests.
func TSAWithHTTPClient(hc *http.Client) TSAOption {
	return func(t *TSA) {
		t.hc = hc
	}
}

// NewTSA creates a client for the TSA at url.
func NewTSA(url string, opts ...TSAOption) *TSA {
	t := &TSA{url: url, hc: http.DefaultClient}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Timestamp requests a token over digest, which must have been computed under the
// named algorithm. Algorithms without an RFC3161 identifier (blake3) are rejected.
func (t *TSA) Timestamp(ctx context.Context, algorithm string, digest cryptoutil.Digest) (*notary.RFC3161Signature, error) {
	hash, ok := cryptoutil.CryptoHash(algorithm)
	if !ok {
		return nil, fmt.Errorf("algorithm %v cannot be used in an RFC3161 request", algorithm)
	}

	tsq, err := (&timestamp.Request{
		HashAlgorithm: hash,
		HashedMessage: digest.Bytes(),
		Certificates:  true,
	}).Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(tsq))
	if err != nil {
		return nil, fmt.Errorf("failed to create timestamp request: %w", err)
	}

	req.Header.Set("Content-Type", "application/timestamp-query")
	resp, err := t.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("timestamp request failed: %w", err)
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read timestamp response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timestamp authority returned status %v", resp.StatusCode)
	}

	sig, err := notary.NewRFC3161Signature(body)
	if err != nil {
		return nil, err
	}

	if sig.Digest() != digest {
		return nil, fmt.Errorf("timestamp authority attested %v, expected %v", sig.Digest().Hex(), digest.Hex())
	}

	log.Debugf("tsa %v: token over %v at %v", t.url, digest.Hex(), sig.Time())
	return sig, nil
}
