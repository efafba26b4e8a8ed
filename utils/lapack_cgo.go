//go:build cgo && netlib

package utils

/*
#cgo CFLAGS: -march=native -mavx -mavx2
#cgo LDFLAGS: -lopenblas -llapacke -lgfortran -lm -lpthread
#include <cblas.h>
#include <lapacke.h>
*/
import "C"

import (
	"log"

	"gonum.org/v1/gonum/blas/blas64"
	netblas "gonum.org/v1/netlib/blas/netlib"
)

// Element matrix products and the dense LU of static condensation go through
// blas64, so linking OpenBLAS here speeds up high order runs
func init() {
	blas64.Use(netblas.Implementation{})
	log.Printf("Using netlib to accelerate BLAS")
}
