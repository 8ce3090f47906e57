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
	"bytes"
	"fmt"
	"hash"
	"io"
	"os"
)

// CalculateDigestSet reads r exactly once and returns the digest of its contents
// under each of the requested algorithms. Every hasher sees the same bytes in the
// same order, so the source may be a pipe or other non seekable stream.
func CalculateDigestSet(r io.Reader, algorithms []string) (DigestSet, error) {
	hashers := make(map[string]hash.Hash, len(algorithms))
	writers := make([]io.Writer, 0, len(algorithms))
	for _, algorithm := range algorithms {
		if _, ok := hashers[algorithm]; ok {
			continue
		}

		hasher, err := HashByName(algorithm)
		if err != nil {
			return nil, err
		}

		hashers[algorithm] = hasher
		writers = append(writers, hasher)
	}

	if len(writers) > 0 {
		if _, err := io.Copy(io.MultiWriter(writers...), r); err != nil {
			return nil, fmt.Errorf("failed to digest data: %w", err)
		}
	}

	digestSet := make(DigestSet, len(hashers))
	for algorithm, hasher := range hashers {
		digestSet[algorithm] = Digest(hasher.Sum(nil))
	}

	return digestSet, nil
}

// CalculateDigestSetFromBytes digests an in memory buffer.
func CalculateDigestSetFromBytes(data []byte, algorithms []string) (DigestSet, error) {
	return CalculateDigestSet(bytes.NewReader(data), algorithms)
}

// CalculateDigestSetFromFile digests the contents of the file at path.
func CalculateDigestSetFromFile(path string, algorithms []string) (DigestSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file to digest: %w", err)
	}

	defer file.Close()
	return CalculateDigestSet(file, algorithms)
}
