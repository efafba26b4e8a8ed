package solver

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/james-bowman/sparse"

	"github.com/notargets/gofem2d/utils"
)

// Operator is a square linear map y = A x
type Operator interface {
	Size() int
	MulVec(x, y []float64)
}

// Rows below this are multiplied on one goroutine
const parallelRows = 4096

// CSR is a square compressed sparse row operator over a sparse.CSR matrix
type CSR struct {
	M      *sparse.CSR
	n      int
	indptr []int
	ind    []int
	data   []float64
	pm     *utils.PartitionMap
}

// NewCSR wraps a square sparse matrix
func NewCSR(A *sparse.CSR) *CSR {
	nr, nc := A.Dims()
	if nr != nc {
		panic(fmt.Sprintf("operator must be square, have %d x %d", nr, nc))
	}
	raw := A.RawMatrix()
	np := 1
	if nr >= parallelRows {
		np = runtime.NumCPU()
	}
	return &CSR{
		M:      A,
		n:      nr,
		indptr: raw.Indptr,
		ind:    raw.Ind,
		data:   raw.Data,
		pm:     utils.NewPartitionMap(np, nr),
	}
}

// Size returns the number of rows
func (A *CSR) Size() int { return A.n }

// NNZ returns the number of stored entries
func (A *CSR) NNZ() int { return len(A.data) }

// MulVec computes y = A x, splitting rows across goroutines for large systems
func (A *CSR) MulVec(x, y []float64) {
	if len(x) != A.n || len(y) != A.n {
		panic(fmt.Sprintf("dimension mismatch: operator %d, x %d, y %d", A.n, len(x), len(y)))
	}
	if A.pm.ParallelDegree == 1 {
		A.mulRows(0, A.n, x, y)
		return
	}
	var wg sync.WaitGroup
	for bn := 0; bn < A.pm.ParallelDegree; bn++ {
		wg.Add(1)
		go func(bn int) {
			defer wg.Done()
			kMin, kMax := A.pm.GetBucketRange(bn)
			A.mulRows(kMin, kMax, x, y)
		}(bn)
	}
	wg.Wait()
}

func (A *CSR) mulRows(i0, i1 int, x, y []float64) {
	for i := i0; i < i1; i++ {
		var s float64
		for p := A.indptr[i]; p < A.indptr[i+1]; p++ {
			s += A.data[p] * x[A.ind[p]]
		}
		y[i] = s
	}
}

// Row returns the column indices and values of row i, sharing storage
func (A *CSR) Row(i int) (cols []int, vals []float64) {
	lo, hi := A.indptr[i], A.indptr[i+1]
	return A.ind[lo:hi], A.data[lo:hi]
}

// Diagonal returns a copy of the main diagonal
func (A *CSR) Diagonal() (d []float64) {
	d = make([]float64, A.n)
	for i := 0; i < A.n; i++ {
		cols, vals := A.Row(i)
		for p, j := range cols {
			if j == i {
				d[i] += vals[p]
			}
		}
	}
	return
}
