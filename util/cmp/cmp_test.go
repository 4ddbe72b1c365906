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

package cmp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_MaxMinInt(t *testing.T) {
	tests := []struct {
		a, b     int
		max, min int
	}{
		{-1, 0, 0, -1},
		{0, 0, 0, 0},
		{1234, 1, 1234, 1},
		{math.MaxInt32, math.MaxInt32 - 1, math.MaxInt32, math.MaxInt32 - 1},
	}
	for _, test := range tests {
		assert.Equal(t, test.max, MaxInt(test.a, test.b), "MaxInt(%d, %d)", test.a, test.b)
		assert.Equal(t, test.max, MaxInt(test.b, test.a), "MaxInt(%d, %d)", test.b, test.a)
		assert.Equal(t, test.min, MinInt(test.a, test.b), "MinInt(%d, %d)", test.a, test.b)
		assert.Equal(t, test.min, MinInt(test.b, test.a), "MinInt(%d, %d)", test.b, test.a)
	}
}

func Test_ClampInt(t *testing.T) {
	assert.Equal(t, 1, ClampInt(-5, 1, 10))
	assert.Equal(t, 5, ClampInt(5, 1, 10))
	assert.Equal(t, 10, ClampInt(50, 1, 10))
}
