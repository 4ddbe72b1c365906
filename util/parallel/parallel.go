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

// Package parallel is a utility package for running parallel/concurrent tasks.
package parallel

import (
	"context"
	"sync/atomic"
)

// Invoke runs the given callbacks concurrently. All the callbacks are run in a
// child of 'ctx'. If any of the callbacks returns an error, Invoke cancels this
// child context, waits for the remaining callbacks to complete, and returns the
// first error. Otherwise, Invoke waits for all the callbacks to complete, then
// returns nil.
func Invoke(ctx context.Context, calls ...func(ctx context.Context) error) error {
	return InvokeN(ctx, len(calls),
		func(ctx context.Context, i int) error {
			return calls[i](ctx)
		})
}

// InvokeN runs the given callback 'n' times concurrently. It invokes the
// callbacks with i=0, i=1, ..., i=n-1 in a child of 'ctx'. If any of the
// callbacks returns an error, InvokeN cancels this child context, waits for the
// remaining callbacks to complete, and returns the first error. Otherwise,
// InvokeN waits for all the callbacks to complete, then returns nil.
func InvokeN(ctx context.Context, n int, call func(ctx context.Context, i int) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ch := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			ch <- call(ctx, i)
		}(i)
	}
	var firstErr error
	for i := 0; i < n; i++ {
		err := <-ch
		if err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	return firstErr
}

// NumChunks returns how many chunks of at most chunkSize items cover total
// items.
func NumChunks(total, chunkSize int) int {
	if chunkSize <= 0 {
		chunkSize = 1
	}
	return (total + chunkSize - 1) / chunkSize
}

// InvokeChunks splits the range [0, total) into chunks of at most chunkSize
// items and calls 'call' once for each chunk, from at most 'parallelism'
// goroutines at a time. Chunks are numbered from 0 in range order, so callers
// can collect per-chunk results into a slice and merge them in a
// deterministic order. Like InvokeN, the first error cancels the child
// context and is returned once every goroutine has finished. Chunks not yet
// started when ctx is done aren't called.
func InvokeChunks(ctx context.Context, total, chunkSize, parallelism int,
	call func(ctx context.Context, chunk, start, end int) error) error {
	if chunkSize <= 0 {
		chunkSize = 1
	}
	chunks := NumChunks(total, chunkSize)
	if parallelism <= 0 {
		parallelism = 1
	}
	if parallelism > chunks {
		parallelism = chunks
	}
	var next int64 = -1
	return InvokeN(ctx, parallelism, func(ctx context.Context, _ int) error {
		for {
			chunk := int(atomic.AddInt64(&next, 1))
			if chunk >= chunks {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			start := chunk * chunkSize
			end := start + chunkSize
			if end > total {
				end = total
			}
			if err := call(ctx, chunk, start, end); err != nil {
				return err
			}
		}
	})
}

// Go is like the 'go' keyword but returns a function that blocks until the
// goroutine exits. Its safe to call the returned wait function multiple times
func Go(run func()) (wait func()) {
	done := make(chan struct{})
	go func() {
		run()
		close(done)
	}()
	return func() {
		<-done
	}
}

// GoCaptureError is like the go keyword but returns a function that blocks until the
// goroutine exits, the returned error from the goroutine function is available as
// the result of calling the retuned wait() function. Its safe to call the returned
// wait function mutliple times, it'll always report the same result
func GoCaptureError(run func() error) (wait func() error) {
	done := make(chan error, 1)
	go func() {
		done <- run()
		close(done)
	}()
	var resultErr error
	return func() error {
		err, open := <-done
		if open {
			resultErr = err
		}
		return resultErr
	}
}
