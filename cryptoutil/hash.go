// Copyright 2021 The Stamp Contributors
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
	"crypto"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"github.com/zeebo/blake3"
)

type ErrUnknownAlgorithm struct {
	Algorithm string
}

func (e ErrUnknownAlgorithm) Error() string {
	return fmt.Sprintf("unknown hash algorithm: %v", e.Algorithm)
}

// hashesByName is the closed set of hash algorithms the library knows how to
// construct. Names are part of the wire format and must not change.
var hashesByName = map[string]func() hash.Hash{
	"sha1":   sha1.New,
	"sha224": sha256.New224,
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
	"blake3": func() hash.Hash { return blake3.New() },
}

// HashByName returns a fresh incremental hasher for the named algorithm.
func HashByName(algorithm string) (hash.Hash, error) {
	newHash, ok := hashesByName[algorithm]
	if !ok {
		return nil, ErrUnknownAlgorithm{Algorithm: algorithm}
	}

	return newHash(), nil
}

// SupportedAlgorithms returns the names of every algorithm HashByName accepts.
func SupportedAlgorithms() []string {
	algorithms := make([]string, 0, len(hashesByName))
	for name := range hashesByName {
		algorithms = append(algorithms, name)
	}

	return algorithms
}

// CryptoHash maps an algorithm name to its crypto.Hash identifier for callers that
// interoperate with x509 style APIs, such as RFC3161 timestamp requests. Algorithms
// without a crypto.Hash assignment (blake3) report false.
func CryptoHash(algorithm string) (crypto.Hash, bool) {
	switch algorithm {
	case "sha1":
		return crypto.SHA1, true
	case "sha224":
		return crypto.SHA224, true
	case "sha256":
		return crypto.SHA256, true
	case "sha384":
		return crypto.SHA384, true
	case "sha512":
		return crypto.SHA512, true
	default:
		return 0, false
	}
}

// HashNameFromCrypto is the inverse of CryptoHash.
func HashNameFromCrypto(h crypto.Hash) (string, bool) {
	switch h {
	case crypto.SHA1:
		return "sha1", true
	case crypto.SHA224:
		return "sha224", true
	case crypto.SHA256:
		return "sha256", true
	case crypto.SHA384:
		return "sha384", true
	case crypto.SHA512:
		return "sha512", true
	default:
		return "", false
	}
}
