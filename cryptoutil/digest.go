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
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Digest is the raw output of a hash algorithm over some input bytes. It is stored
// as a string so it can key maps and compare with the ordinary string ordering,
// which is the byte-lexicographic order the serialization format depends on.
type Digest string

// DigestFromHex decodes a hex encoded digest.
func DigestFromHex(h string) (Digest, error) {
	b, err := hex.DecodeString(h)
	if err != nil {
		return "", fmt.Errorf("failed to decode digest: %w", err)
	}

	return Digest(b), nil
}

// Hex returns the lowercase hex encoding of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString([]byte(d))
}

// Bytes returns a copy of the raw digest bytes.
func (d Digest) Bytes() []byte {
	return []byte(d)
}

// Compare orders digests lexicographically on their raw bytes.
func (d Digest) Compare(other Digest) int {
	return strings.Compare(string(d), string(other))
}

func (d Digest) String() string {
	return d.Hex()
}

// DigestSet maps a hash algorithm name to the digest of some data under that
// algorithm. A set holds at most one digest per algorithm.
type DigestSet map[string]Digest

// Equal reports whether both sets contain exactly the same algorithms and digests.
func (ds DigestSet) Equal(other DigestSet) bool {
	if len(ds) != len(other) {
		return false
	}

	for algorithm, digest := range ds {
		otherDigest, ok := other[algorithm]
		if !ok || digest != otherDigest {
			return false
		}
	}

	return true
}

// Algorithms returns the algorithm names in the set, sorted.
func (ds DigestSet) Algorithms() []string {
	algorithms := make([]string, 0, len(ds))
	for algorithm := range ds {
		algorithms = append(algorithms, algorithm)
	}

	sort.Strings(algorithms)
	return algorithms
}

// SortedDigests returns the set's digests in their canonical byte order. This is
// the order in which source digests seed the digest stack during serialization.
func (ds DigestSet) SortedDigests() []Digest {
	digests := make([]Digest, 0, len(ds))
	for _, digest := range ds {
		digests = append(digests, digest)
	}

	sort.Slice(digests, func(i, j int) bool { return digests[i].Compare(digests[j]) < 0 })
	return digests
}
