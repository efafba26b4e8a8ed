package fem

import (
	"fmt"

	"github.com/notargets/gofem2d/mesh"
)

// ElementTransformation maps reference coordinates of one mesh element to
// physical coordinates through the linear (triangle) or bilinear (quad)
// vertex map
type ElementTransformation struct {
	Element int
	Geom    mesh.ElementType
	Coords  [][2]float64
}

// NewElementTransformation returns the transformation of element k
func NewElementTransformation(m *mesh.Mesh, k int) *ElementTransformation {
	return &ElementTransformation{
		Element: k,
		Geom:    m.ElementTypes[k],
		Coords:  m.ElementCoords(k),
	}
}

func (T *ElementTransformation) vertexShape(x [2]float64) (n []float64, dn [][2]float64) {
	switch T.Geom {
	case mesh.Triangle:
		n = []float64{1 - x[0] - x[1], x[0], x[1]}
		dn = [][2]float64{{-1, -1}, {1, 0}, {0, 1}}
	case mesh.Quad:
		s, t := x[0], x[1]
		n = []float64{(1 - s) * (1 - t), s * (1 - t), s * t, (1 - s) * t}
		dn = [][2]float64{{-(1 - t), -(1 - s)}, {1 - t, -s}, {t, s}, {-t, 1 - s}}
	default:
		panic(fmt.Sprintf("unknown geometry %v", T.Geom))
	}
	return
}

// Transform maps a reference point to physical coordinates
func (T *ElementTransformation) Transform(x [2]float64) (p [2]float64) {
	n, _ := T.vertexShape(x)
	for i, c := range T.Coords {
		p[0] += n[i] * c[0]
		p[1] += n[i] * c[1]
	}
	return
}

// Jacobian returns dx/dxi at a reference point, J[i][j] = d x_i / d xi_j, and
// its determinant
func (T *ElementTransformation) Jacobian(x [2]float64) (J [2][2]float64, det float64) {
	_, dn := T.vertexShape(x)
	for i, c := range T.Coords {
		for a := 0; a < 2; a++ {
			for b := 0; b < 2; b++ {
				J[a][b] += c[a] * dn[i][b]
			}
		}
	}
	det = J[0][0]*J[1][1] - J[0][1]*J[1][0]
	return
}

// PhysicalDShape maps reference shape gradients to physical gradients with
// J^{-T} and returns the Jacobian determinant
func (T *ElementTransformation) PhysicalDShape(x [2]float64, dref, dphys [][2]float64) (det float64) {
	var J [2][2]float64
	J, det = T.Jacobian(x)
	if det <= 0 {
		panic(fmt.Sprintf("element %d has non-positive Jacobian %g", T.Element, det))
	}
	// J^{-T} = 1/det [[J11, -J10], [-J01, J00]]
	for j, g := range dref {
		dphys[j] = [2]float64{
			(J[1][1]*g[0] - J[1][0]*g[1]) / det,
			(-J[0][1]*g[0] + J[0][0]*g[1]) / det,
		}
	}
	return
}
