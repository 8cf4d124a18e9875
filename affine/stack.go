// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package affine

// Segment is a contiguous block [Offset, Offset+Length) of a flat vector.
type Segment struct {
	Offset, Length int
}

// Segments lays out disjoint blocks over one contiguous buffer in order.
type Segments []Segment

// Of returns consecutive segments of the given sizes.
func Of(sizes ...int) Segments {
	segs := make(Segments, len(sizes))
	off := 0
	for i, n := range sizes {
		if n < 0 {
			panic("affine: negative segment size")
		}
		segs[i] = Segment{Offset: off, Length: n}
		off += n
	}
	return segs
}

// Total returns the length of the buffer covered by the segments.
func (s Segments) Total() int {
	if len(s) == 0 {
		return 0
	}
	last := s[len(s)-1]
	return last.Offset + last.Length
}

// Slice returns the i-th block of v, sharing its storage.
func (s Segments) Slice(v []float64, i int) []float64 {
	seg := s[i]
	return v[seg.Offset : seg.Offset+seg.Length : seg.Offset+seg.Length]
}

// Stacked is the vertical concatenation of transforms sharing one primal shape:
//
//	𝒜(x) = [𝒜₁(x); 𝒜₂(x); ...; 𝒜ₖ(x)]
type Stacked struct {
	n     int
	parts []Transform
	segs  Segments
	work  []float64
}

// Vstack stacks the transforms in order and returns the output segment of each one.
// All transforms must share the same primal shape.
func Vstack(ts ...Transform) (*Stacked, Segments) {
	if len(ts) == 0 {
		panic("affine: nothing to stack")
	}
	n := ts[0].PrimalShape()
	sizes := make([]int, len(ts))
	for i, t := range ts {
		if t.PrimalShape() != n {
			panic("affine: stacked transforms have different primal shapes")
		}
		sizes[i] = t.DualShape()
	}
	segs := Of(sizes...)
	return &Stacked{
		n:     n,
		parts: append([]Transform(nil), ts...),
		segs:  segs,
		work:  make([]float64, n),
	}, segs
}

func (s *Stacked) PrimalShape() int   { return s.n }
func (s *Stacked) DualShape() int     { return s.segs.Total() }
func (s *Stacked) Parts() []Transform { return s.parts }
func (s *Stacked) Segments() Segments { return s.segs }
func (*Stacked) IsIdentity() bool     { return false }
func (*Stacked) IsSelector() bool     { return false }

func (s *Stacked) LinearMap(dst, x []float64) {
	for i, t := range s.parts {
		t.LinearMap(s.segs.Slice(dst, i), x)
	}
}

// AdjointMap writes ∑ 𝒜ᵢᵀuᵢ into dst.
// It uses an internal buffer and must not be called concurrently.
func (s *Stacked) AdjointMap(dst, u []float64) {
	clear(dst[:s.n])
	for i, t := range s.parts {
		t.AdjointMap(s.work, s.segs.Slice(u, i))
		for j, w := range s.work {
			dst[j] += w
		}
	}
}

func (s *Stacked) AffineMap(dst, x []float64) {
	for i, t := range s.parts {
		t.AffineMap(s.segs.Slice(dst, i), x)
	}
}
