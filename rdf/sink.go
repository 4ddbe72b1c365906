// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rdf

import (
	"github.com/i-d-lytvynenko/kg-inference/util/cmp"
)

// Chunk is a batch of triples produced by a query.
type Chunk struct {
	Triples []Triple
}

// ChunkReadyCallback will be called when the TripleSink has a full chunk to
// pass along.
type ChunkReadyCallback func(*Chunk) error

// TripleSink accumulates triples and sends them to the destination in large
// chunks.
type TripleSink struct {
	// Chunks are sent here.
	dest ChunkReadyCallback
	// The next chunk to send.
	res *Chunk
	// When the chunk is considered full and should be flushed.
	flushAtSize int
}

// NewTripleSink constructs a new TripleSink. Once 'flushAtSize' triples have
// been accumulated the readyCallback function will be called with the new
// chunk.
func NewTripleSink(readyCallback ChunkReadyCallback, flushAtSize int) *TripleSink {
	flushAtSize = cmp.MaxInt(1, flushAtSize)
	return &TripleSink{
		dest:        readyCallback,
		res:         &Chunk{Triples: make([]Triple, 0, flushAtSize)},
		flushAtSize: flushAtSize,
	}
}

// Write accumulates the triple to send to the destination. It may also flush
// a chunk of triples. Write returns nil on success, or an error if flushing
// failed.
func (b *TripleSink) Write(t Triple) error {
	b.res.Triples = append(b.res.Triples, t)
	if len(b.res.Triples) == b.flushAtSize {
		return b.Flush()
	}
	return nil
}

// Flush sends a chunk of triples to the destination, if needed. It returns nil
// on success, or an error if sending the chunk failed.
func (b *TripleSink) Flush() error {
	if len(b.res.Triples) == 0 {
		return nil
	}
	err := b.dest(b.res)
	b.res = &Chunk{Triples: make([]Triple, 0, b.flushAtSize)}
	return err
}
