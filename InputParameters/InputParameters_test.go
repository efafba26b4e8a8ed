package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofem2d/solver"
)

func TestDiffusionParse(t *testing.T) {
	fileInput := []byte(`
Title: Test Case
NX: 16
NY: 8
ElementType: tri
RefineLevels: 1
PolynomialOrder: 2
StaticCondensation: true
EssentialBCs: [1, 3]
Solver:
  MaxIterations: 500
  RelTol: 1.e-8
  Preconditioner: jacobi
`)
	var input Diffusion
	require.NoError(t, input.Parse(fileInput))
	assert.Equal(t, "Test Case", input.Title)
	assert.Equal(t, 16, input.NX)
	assert.Equal(t, "tri", input.ElementType)
	assert.Equal(t, 2, input.PolynomialOrder)
	assert.True(t, input.StaticCondensation)
	assert.Equal(t, []int{1, 3}, input.EssentialBCs)
	assert.Equal(t, 500, input.Solver.MaxIterations)
	assert.Equal(t, 1.e-8, input.Solver.RelTol)
	assert.Equal(t, "jacobi", input.Solver.Preconditioner)
	input.Print()

	var (
		settings = solver.DefaultSettings()
		precond  string
	)
	input.Solver.ApplyTo(&settings, &precond)
	assert.Equal(t, 500, settings.MaxIter)
	assert.Equal(t, 1.e-8, settings.RelTol)
	assert.Equal(t, 0., settings.AbsTol)
	assert.Equal(t, "jacobi", precond)

	assert.Error(t, input.Parse([]byte("NX: [1")))
}

func TestMHDParse(t *testing.T) {
	fileInput := []byte(`
Title: Tearing mode
Case: 2
Beta: 0.001
Lx: 3.0
Lambda: 5.0
Resistivity: 1.e-3
Ep: 0.2
Tau: 15
Domain:
  XMin: 0
  XMax: 3
`)
	var input MHD
	require.NoError(t, input.Parse(fileInput))
	assert.Equal(t, 2, input.Case)
	assert.Equal(t, 0.001, input.Beta)
	assert.Equal(t, 5., input.Lambda)
	assert.Equal(t, 1.e-3, input.Resistivity)
	assert.Equal(t, 3., input.Domain["XMax"])
	input.Print()
}
