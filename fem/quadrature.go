package fem

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/notargets/gofem2d/mesh"
)

// IntegrationPoint is a reference coordinate with its quadrature weight
type IntegrationPoint struct {
	X      [2]float64
	Weight float64
}

// IntegrationRule is a list of integration points on a reference domain
type IntegrationRule []IntegrationPoint

// GaussLegendre returns the n point Gauss-Legendre rule on [0,1]
func GaussLegendre(n int) (x, w []float64) {
	x, w = make([]float64, n), make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, 0, 1)
	return
}

type ruleKey struct {
	geom  int // -1 for the segment
	order int
}

var (
	ruleCache   = make(map[ruleKey]IntegrationRule)
	ruleCacheMu sync.Mutex
)

func cachedRule(key ruleKey, build func() IntegrationRule) IntegrationRule {
	ruleCacheMu.Lock()
	defer ruleCacheMu.Unlock()
	if r, ok := ruleCache[key]; ok {
		return r
	}
	r := build()
	ruleCache[key] = r
	return r
}

func pointsForOrder(order int) int {
	if order < 0 {
		order = 0
	}
	return order/2 + 1
}

// SegmentRule integrates polynomials of the given order exactly on [0,1]. The
// coordinate is stored in X[0].
func SegmentRule(order int) IntegrationRule {
	return cachedRule(ruleKey{-1, order}, func() IntegrationRule {
		x, w := GaussLegendre(pointsForOrder(order))
		ir := make(IntegrationRule, len(x))
		for i := range x {
			ir[i] = IntegrationPoint{X: [2]float64{x[i], 0}, Weight: w[i]}
		}
		return ir
	})
}

// QuadRule is the tensor Gauss-Legendre rule on [0,1]^2, exact for Q_order
func QuadRule(order int) IntegrationRule {
	return cachedRule(ruleKey{int(mesh.Quad), order}, func() IntegrationRule {
		x, w := GaussLegendre(pointsForOrder(order))
		ir := make(IntegrationRule, 0, len(x)*len(x))
		for j := range x {
			for i := range x {
				ir = append(ir, IntegrationPoint{
					X:      [2]float64{x[i], x[j]},
					Weight: w[i] * w[j],
				})
			}
		}
		return ir
	})
}

// TriangleRule is a collapsed (Duffy) Gauss rule on the reference triangle
// (0,0),(1,0),(0,1), exact for P_order. The collapse x = u(1-v), y = v adds
// one to the degree in v.
func TriangleRule(order int) IntegrationRule {
	return cachedRule(ruleKey{int(mesh.Triangle), order}, func() IntegrationRule {
		var (
			xu, wu = GaussLegendre(pointsForOrder(order))
			xv, wv = GaussLegendre(pointsForOrder(order + 1))
			ir     = make(IntegrationRule, 0, len(xu)*len(xv))
		)
		for j := range xv {
			for i := range xu {
				ir = append(ir, IntegrationPoint{
					X:      [2]float64{xu[i] * (1 - xv[j]), xv[j]},
					Weight: wu[i] * wv[j] * (1 - xv[j]),
				})
			}
		}
		return ir
	})
}

// IntRule returns an integration rule for the element geometry, exact for
// polynomials of the given order
func IntRule(geom mesh.ElementType, order int) IntegrationRule {
	switch geom {
	case mesh.Triangle:
		return TriangleRule(order)
	case mesh.Quad:
		return QuadRule(order)
	}
	panic(fmt.Sprintf("no integration rule for %v", geom))
}
