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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestStackAssignsDensePositions(t *testing.T) {
	stack := NewDigestStack()
	assert.Equal(t, 0, stack.Push(Digest("aa")))
	assert.Equal(t, 1, stack.Push(Digest("bb")))
	// pushing an existing digest keeps its position
	assert.Equal(t, 0, stack.Push(Digest("aa")))
	assert.Equal(t, 2, stack.Len())

	pos, ok := stack.Position(Digest("bb"))
	require.True(t, ok)
	assert.Equal(t, 1, pos)

	_, ok = stack.Position(Digest("cc"))
	assert.False(t, ok)
}

func TestDigestStackRejectsOutOfRangeReferences(t *testing.T) {
	stack := NewDigestStack()
	stack.Push(Digest("aa"))

	_, err := stack.At(1)
	malformed := ErrMalformedProof{}
	require.ErrorAs(t, err, &malformed)

	_, err = stack.At(-1)
	require.ErrorAs(t, err, &malformed)

	digest, err := stack.At(0)
	require.NoError(t, err)
	assert.Equal(t, Digest("aa"), digest)
}

func TestEmitValuePrefersBackreferences(t *testing.T) {
	stack := NewDigestStack()
	stack.Push(Digest("aa"))

	onStack := stack.EmitValue(Digest("aa"))
	require.NotNil(t, onStack.Ref)
	assert.Equal(t, 0, *onStack.Ref)
	assert.Empty(t, onStack.Hex)

	offStack := stack.EmitValue(Digest("bb"))
	assert.Nil(t, offStack.Ref)
	assert.Equal(t, Digest("bb").Hex(), offStack.Hex)
}

func TestResolveValue(t *testing.T) {
	stack := NewDigestStack()
	stack.Push(Digest("aa"))
	ref := 0

	digest, err := stack.ResolveValue(StackValue{Ref: &ref})
	require.NoError(t, err)
	assert.Equal(t, Digest("aa"), digest)

	digest, err = stack.ResolveValue(StackValue{Hex: "6262"})
	require.NoError(t, err)
	assert.Equal(t, Digest("bb"), digest)

	malformed := ErrMalformedProof{}
	_, err = stack.ResolveValue(StackValue{})
	require.ErrorAs(t, err, &malformed)

	_, err = stack.ResolveValue(StackValue{Ref: &ref, Hex: "6262"})
	require.ErrorAs(t, err, &malformed)

	_, err = stack.ResolveValue(StackValue{Hex: "zz"})
	require.ErrorAs(t, err, &malformed)
}
