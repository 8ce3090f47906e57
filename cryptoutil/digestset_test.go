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

package cryptoutil

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDigestSetKnownValues(t *testing.T) {
	set, err := CalculateDigestSetFromBytes([]byte("hello world"), []string{"sha1", "sha256"})
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Equal(t, "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed", set["sha1"].Hex())
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", set["sha256"].Hex())
}

func TestCalculateDigestSetUnknownAlgorithm(t *testing.T) {
	_, err := CalculateDigestSetFromBytes([]byte("data"), []string{"md6"})
	unknownErr := ErrUnknownAlgorithm{}
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "md6", unknownErr.Algorithm)
}

// countingReader fails the single-pass requirement check if the data is read more
// than once: it reports the total number of bytes served.
type countingReader struct {
	r     io.Reader
	total int
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.total += n
	return n, err
}

func TestCalculateDigestSetReadsDataOnce(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 1000)
	cr := &countingReader{r: bytes.NewReader(data)}
	set, err := CalculateDigestSet(cr, []string{"sha1", "sha256", "sha512", "blake3"})
	require.NoError(t, err)
	require.Len(t, set, 4)
	assert.Equal(t, len(data), cr.total)

	// every hasher saw the full stream
	expected, err := CalculateDigestSetFromBytes(data, []string{"sha256"})
	require.NoError(t, err)
	assert.Equal(t, expected["sha256"], set["sha256"])
}

func TestCalculateDigestSetDeduplicatesAlgorithms(t *testing.T) {
	set, err := CalculateDigestSetFromBytes([]byte("data"), []string{"sha256", "sha256"})
	require.NoError(t, err)
	assert.Len(t, set, 1)
}

func TestCalculateDigestSetPropagatesReadErrors(t *testing.T) {
	wantErr := errors.New("disk on fire")
	_, err := CalculateDigestSet(io.MultiReader(bytes.NewReader([]byte("partial")), &failingReader{err: wantErr}), []string{"sha256"})
	require.ErrorIs(t, err, wantErr)
}

type failingReader struct {
	err error
}

func (fr *failingReader) Read([]byte) (int, error) {
	return 0, fr.err
}

func TestHashByName(t *testing.T) {
	for _, algorithm := range SupportedAlgorithms() {
		hasher, err := HashByName(algorithm)
		require.NoError(t, err, algorithm)
		require.NotNil(t, hasher, algorithm)
	}

	_, err := HashByName("rot13")
	require.Error(t, err)
}
