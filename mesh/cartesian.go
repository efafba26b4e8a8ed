package mesh

import "fmt"

// Boundary attributes assigned by the rectangle generator
const (
	BdrBottom = 1
	BdrRight  = 2
	BdrTop    = 3
	BdrLeft   = 4
)

// NewCartesian2D creates a structured nx x ny mesh of [0,sx]x[0,sy]
func NewCartesian2D(nx, ny int, et ElementType, sx, sy float64) (*Mesh, error) {
	return NewRectangle(nx, ny, et, 0, 0, sx, sy)
}

// NewRectangle creates a structured nx x ny mesh of [x0,x1]x[y0,y1]. Triangle
// meshes split every cell along the diagonal from its lower left corner.
// Boundary attributes are 1=bottom, 2=right, 3=top, 4=left.
func NewRectangle(nx, ny int, et ElementType, x0, y0, x1, y1 float64) (m *Mesh, err error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("mesh must have at least one cell per direction, got %d x %d", nx, ny)
	}
	if x1 <= x0 || y1 <= y0 {
		return nil, fmt.Errorf("degenerate rectangle [%g,%g]x[%g,%g]", x0, x1, y0, y1)
	}
	var (
		hx = (x1 - x0) / float64(nx)
		hy = (y1 - y0) / float64(ny)
		id = func(i, j int) int { return i + j*(nx+1) }
	)
	m = NewMesh()
	m.Vertices = make([][2]float64, (nx+1)*(ny+1))
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			x, y := x0+float64(i)*hx, y0+float64(j)*hy
			// Pin the far edges so boundary coordinates are exact
			if i == nx {
				x = x1
			}
			if j == ny {
				y = y1
			}
			m.Vertices[id(i, j)] = [2]float64{x, y}
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v0, v1, v2, v3 := id(i, j), id(i+1, j), id(i+1, j+1), id(i, j+1)
			switch et {
			case Quad:
				m.AddElement(Quad, []int{v0, v1, v2, v3}, 1)
			case Triangle:
				m.AddElement(Triangle, []int{v0, v1, v2}, 1)
				m.AddElement(Triangle, []int{v0, v2, v3}, 1)
			default:
				return nil, fmt.Errorf("unsupported element type %v", et)
			}
		}
	}
	for i := 0; i < nx; i++ {
		m.Boundary = append(m.Boundary,
			BoundaryEdge{Vertices: [2]int{id(i, 0), id(i+1, 0)}, Attribute: BdrBottom},
			BoundaryEdge{Vertices: [2]int{id(i+1, ny), id(i, ny)}, Attribute: BdrTop})
	}
	for j := 0; j < ny; j++ {
		m.Boundary = append(m.Boundary,
			BoundaryEdge{Vertices: [2]int{id(nx, j), id(nx, j+1)}, Attribute: BdrRight},
			BoundaryEdge{Vertices: [2]int{id(0, j+1), id(0, j)}, Attribute: BdrLeft})
	}
	m.BoundaryTags[BdrBottom] = "bottom"
	m.BoundaryTags[BdrRight] = "right"
	m.BoundaryTags[BdrTop] = "top"
	m.BoundaryTags[BdrLeft] = "left"
	if err = m.BuildConnectivity(); err != nil {
		return nil, err
	}
	return
}
