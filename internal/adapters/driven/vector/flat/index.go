// Package flat provides an exact inner-product vector index.
//
// Vectors are held in a single contiguous float32 slice and scanned in full
// on every search. With L2-normalised vectors the inner product equals
// cosine similarity.
package flat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/custodia-labs/agenda/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// ErrNonFinite is returned by Search for a query holding NaN or Inf.
var ErrNonFinite = errors.New("flat: non-finite query vector")

// Index is an immutable, exact k-NN index.
type Index struct {
	dims int
	n    int
	data []float32 // n*dims, row-major
}

// Build creates an index from vectors. Position i of the index is vectors[i].
// Vectors are copied.
func Build(vectors [][]float32) (*Index, error) {
	if len(vectors) == 0 {
		return nil, errors.New("flat: no vectors to index")
	}
	dims := len(vectors[0])
	if dims == 0 {
		return nil, errors.New("flat: zero-dimension vectors")
	}

	data := make([]float32, 0, len(vectors)*dims)
	for i, v := range vectors {
		if len(v) != dims {
			return nil, fmt.Errorf("flat: vector %d has %d dimensions, want %d", i, len(v), dims)
		}
		data = append(data, v...)
	}

	return &Index{dims: dims, n: len(vectors), data: data}, nil
}

// Len returns the number of indexed vectors.
func (x *Index) Len() int {
	return x.n
}

// Dimensions returns the vector size.
func (x *Index) Dimensions() int {
	return x.dims
}

// Vector returns a copy of the vector at position.
func (x *Index) Vector(position int) []float32 {
	if position < 0 || position >= x.n {
		return nil
	}
	return slices.Clone(x.row(position))
}

func (x *Index) row(i int) []float32 {
	return x.data[i*x.dims : (i+1)*x.dims]
}

// Search returns the min(k, Len()) highest inner products with query,
// ordered by descending score with ties broken by lower position. Rows whose
// score is NaN rank last.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 || x.n == 0 {
		return []driven.VectorHit{}, nil
	}
	if len(query) != x.dims {
		return nil, fmt.Errorf("flat: query has %d dimensions, index has %d", len(query), x.dims)
	}
	for i, f := range query {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return nil, fmt.Errorf("%w: query component %d is %v", ErrNonFinite, i, f)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hits := make([]driven.VectorHit, x.n)
	for i := 0; i < x.n; i++ {
		score := dot(x.row(i), query)
		if math.IsNaN(score) {
			score = math.Inf(-1)
		}
		hits[i] = driven.VectorHit{Position: i, Score: score}
	}

	slices.SortFunc(hits, func(a, b driven.VectorHit) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return a.Position - b.Position
		}
	})

	if k > x.n {
		k = x.n
	}
	return hits[:k], nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Normalize scales v in place to unit L2 norm and returns it.
// A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v
}
