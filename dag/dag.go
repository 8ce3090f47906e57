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

package dag

import (
	"fmt"
	"sort"

	"github.com/in-toto/go-stamp/cryptoutil"
)

type ErrDuplicateProducer struct {
	Digest cryptoutil.Digest
}

func (e ErrDuplicateProducer) Error() string {
	return fmt.Sprintf("digest %v is already produced by another op", e.Digest.Hex())
}

type ErrCyclicOp struct {
	Digest cryptoutil.Digest
}

func (e ErrCyclicOp) Error() string {
	return fmt.Sprintf("op with output %v takes its own output as a transitive input", e.Digest.Hex())
}

// Dag is the proof graph: an ordered set of ops whose edges run from each op's
// input digests to the op that produced them. Inputs with no producer in the
// graph are roots, typically the document's source digests.
type Dag struct {
	ops       []Op
	producers map[cryptoutil.Digest]Op
	consumers map[cryptoutil.Digest][]Op
}

// New builds a Dag from ops, validating each as if appended with Add.
func New(ops ...Op) (*Dag, error) {
	d := &Dag{
		producers: map[cryptoutil.Digest]Op{},
		consumers: map[cryptoutil.Digest][]Op{},
	}

	for _, op := range ops {
		if err := d.Add(op); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Add appends an op to the graph. Adding an op equal to one already present is a
// no-op; an op whose output collides with a different op, or that takes its own
// output as a transitive input, is rejected.
func (d *Dag) Add(op Op) error {
	if existing, ok := d.producers[op.Digest()]; ok {
		if CompareOps(existing, op) == 0 {
			return nil
		}

		return ErrDuplicateProducer{Digest: op.Digest()}
	}

	if d.reaches(op.Inputs(), op.Digest()) {
		return ErrCyclicOp{Digest: op.Digest()}
	}

	d.ops = append(d.ops, op)
	d.producers[op.Digest()] = op
	for _, input := range op.Inputs() {
		d.consumers[input] = append(d.consumers[input], op)
	}

	return nil
}

// reaches reports whether target is reachable backwards from any of from through
// the producers already in the graph.
func (d *Dag) reaches(from []cryptoutil.Digest, target cryptoutil.Digest) bool {
	visited := map[cryptoutil.Digest]struct{}{}
	pending := append([]cryptoutil.Digest{}, from...)
	for len(pending) > 0 {
		next := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if next == target {
			return true
		}

		if _, ok := visited[next]; ok {
			continue
		}

		visited[next] = struct{}{}
		if producer, ok := d.producers[next]; ok {
			pending = append(pending, producer.Inputs()...)
		}
	}

	return false
}

// Len returns the number of ops in the graph.
func (d *Dag) Len() int {
	return len(d.ops)
}

// Ops returns the graph's ops in insertion order.
func (d *Dag) Ops() []Op {
	return append([]Op{}, d.ops...)
}

// SortedOps returns the graph's ops in the canonical CompareOps order used for
// serialization.
func (d *Dag) SortedOps() []Op {
	ops := d.Ops()
	sort.Slice(ops, func(i, j int) bool { return CompareOps(ops[i], ops[j]) < 0 })
	return ops
}

// Equal reports whether both graphs contain the same set of ops.
func (d *Dag) Equal(other *Dag) bool {
	if d.Len() != other.Len() {
		return false
	}

	ours, theirs := d.SortedOps(), other.SortedOps()
	for i := range ours {
		if CompareOps(ours[i], theirs[i]) != 0 {
			return false
		}
	}

	return true
}

// Producer returns the op whose output is digest, if one is in the graph.
func (d *Dag) Producer(digest cryptoutil.Digest) (Op, bool) {
	op, ok := d.producers[digest]
	return op, ok
}

// Descendants computes the forward closure of seeds over the graph: the seeds
// themselves plus, transitively, the output of every op that consumes a digest
// already in the closure. The walk visits each edge once, so the cost is linear
// in the size of the graph.
func (d *Dag) Descendants(seeds []cryptoutil.Digest) map[cryptoutil.Digest]struct{} {
	closure := make(map[cryptoutil.Digest]struct{}, len(seeds))
	pending := append([]cryptoutil.Digest{}, seeds...)
	for len(pending) > 0 {
		next := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if _, ok := closure[next]; ok {
			continue
		}

		closure[next] = struct{}{}
		for _, consumer := range d.consumers[next] {
			pending = append(pending, consumer.Digest())
		}
	}

	return closure
}
