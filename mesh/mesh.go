package mesh

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
)

// ElementType represents the supported 2D element shapes
type ElementType int

const (
	Triangle ElementType = iota
	Quad
)

func (e ElementType) String() string {
	return [...]string{"Triangle", "Quad"}[e]
}

// ParseElementType accepts "tri", "triangle", "quad" or "quadrilateral" in
// any case
func ParseElementType(s string) (ElementType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tri", "triangle":
		return Triangle, nil
	case "quad", "quadrilateral":
		return Quad, nil
	}
	return 0, fmt.Errorf("unknown element type %q", s)
}

// NumVertices returns the number of corner vertices of the element shape
func (e ElementType) NumVertices() int {
	switch e {
	case Triangle:
		return 3
	case Quad:
		return 4
	}
	panic(fmt.Sprintf("unknown element type %d", e))
}

// Edge is a unique mesh edge, Vertices are sorted ascending
type Edge struct {
	Vertices [2]int
	Elements []int // One entry on the boundary, two in the interior
}

// BoundaryEdge is an edge on the domain boundary carrying a boundary attribute
type BoundaryEdge struct {
	Vertices  [2]int // Oriented counter-clockwise with respect to the owning element
	Attribute int
	Element   int // Owning element
	LocalEdge int // Local edge index within the owning element
	Edge      int // Index into Mesh.Edges
}

// Mesh represents a 2D unstructured mesh of triangles and quadrilaterals
type Mesh struct {
	// Geometry
	Vertices [][2]float64

	// Element data
	Elements     [][]int       // Element to vertex connectivity, counter-clockwise
	ElementTypes []ElementType // Element type for each element
	Attributes   []int         // Element attribute (material / physical group), 1-based

	// Boundary data
	Boundary     []BoundaryEdge
	BoundaryTags map[int]string // Optional names for boundary attributes

	// Connectivity (built by BuildConnectivity)
	Edges   []Edge
	EdgeMap map[[2]int]int // Sorted vertex pair to edge index
	EToEdge [][]int        // Element to edge index, per local edge
	EToE    [][]int        // Element to neighbor element per local edge, -1 on boundary
	EToP    []int          // Element to partition mapping (set by Partition)

	NumElements int
	NumVertices int
}

// NewMesh creates an empty mesh
func NewMesh() *Mesh {
	return &Mesh{
		BoundaryTags: make(map[int]string),
	}
}

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".neu":
		return ReadGambitNeutral(filename)
	case ".msh":
		return ReadGmsh(filename)
	case ".su2":
		return ReadSU2(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

// Dimension is the spatial dimension of the mesh
func (m *Mesh) Dimension() int { return 2 }

// AddElement appends an element, re-orienting it counter-clockwise if needed
func (m *Mesh) AddElement(et ElementType, verts []int, attr int) {
	v := make([]int, len(verts))
	copy(v, verts)
	if m.signedArea(v) < 0 {
		// Reverse keeping the first vertex in place
		for i, j := 1, len(v)-1; i < j; i, j = i+1, j-1 {
			v[i], v[j] = v[j], v[i]
		}
	}
	m.Elements = append(m.Elements, v)
	m.ElementTypes = append(m.ElementTypes, et)
	m.Attributes = append(m.Attributes, attr)
	m.NumElements = len(m.Elements)
}

func (m *Mesh) signedArea(verts []int) (area float64) {
	n := len(verts)
	for i := 0; i < n; i++ {
		p, q := m.Vertices[verts[i]], m.Vertices[verts[(i+1)%n]]
		area += p[0]*q[1] - q[0]*p[1]
	}
	return 0.5 * area
}

// ElementArea returns the area of element k
func (m *Mesh) ElementArea(k int) float64 {
	return m.signedArea(m.Elements[k])
}

func (m *Mesh) TotalArea() (a float64) {
	for k := 0; k < m.NumElements; k++ {
		a += m.ElementArea(k)
	}
	return
}

// LocalEdges returns the local vertex index pairs of each edge of the element type
func LocalEdges(et ElementType) [][2]int {
	switch et {
	case Triangle:
		return [][2]int{{0, 1}, {1, 2}, {2, 0}}
	case Quad:
		return [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}
	}
	panic(fmt.Sprintf("unknown element type %d", et))
}

// BuildConnectivity builds unique edges, element-to-edge and element-to-element
// connectivity, then attaches boundary edges to their owning elements. When no
// boundary edges were supplied, every edge with a single element is added with
// attribute 1.
func (m *Mesh) BuildConnectivity() error {
	m.NumElements = len(m.Elements)
	m.NumVertices = len(m.Vertices)
	m.Edges = m.Edges[:0]
	m.EdgeMap = make(map[[2]int]int)
	m.EToEdge = make([][]int, m.NumElements)
	m.EToE = make([][]int, m.NumElements)

	for k := 0; k < m.NumElements; k++ {
		le := LocalEdges(m.ElementTypes[k])
		m.EToEdge[k] = make([]int, len(le))
		m.EToE[k] = make([]int, len(le))
		for i, pair := range le {
			key := edgeKey(m.Elements[k][pair[0]], m.Elements[k][pair[1]])
			id, exists := m.EdgeMap[key]
			if !exists {
				id = len(m.Edges)
				m.Edges = append(m.Edges, Edge{Vertices: key})
				m.EdgeMap[key] = id
			}
			if len(m.Edges[id].Elements) == 2 {
				return fmt.Errorf("edge %v shared by more than two elements", key)
			}
			m.Edges[id].Elements = append(m.Edges[id].Elements, k)
			m.EToEdge[k][i] = id
		}
	}
	for k := 0; k < m.NumElements; k++ {
		for i, id := range m.EToEdge[k] {
			m.EToE[k][i] = -1
			for _, nb := range m.Edges[id].Elements {
				if nb != k {
					m.EToE[k][i] = nb
				}
			}
		}
	}

	if len(m.Boundary) == 0 {
		for id, e := range m.Edges {
			if len(e.Elements) == 1 {
				m.Boundary = append(m.Boundary, BoundaryEdge{
					Vertices: e.Vertices, Attribute: 1, Edge: id})
			}
		}
	}
	for b := range m.Boundary {
		be := &m.Boundary[b]
		key := edgeKey(be.Vertices[0], be.Vertices[1])
		id, ok := m.EdgeMap[key]
		if !ok {
			return fmt.Errorf("boundary edge %v is not an edge of any element", be.Vertices)
		}
		if len(m.Edges[id].Elements) != 1 {
			return fmt.Errorf("boundary edge %v is interior to the mesh", be.Vertices)
		}
		k := m.Edges[id].Elements[0]
		be.Edge, be.Element = id, k
		for i, eid := range m.EToEdge[k] {
			if eid == id {
				be.LocalEdge = i
				pair := LocalEdges(m.ElementTypes[k])[i]
				be.Vertices = [2]int{m.Elements[k][pair[0]], m.Elements[k][pair[1]]}
			}
		}
	}
	return nil
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// BdrAttributes returns the sorted unique boundary attributes
func (m *Mesh) BdrAttributes() (attrs []int) {
	seen := make(map[int]bool)
	for _, be := range m.Boundary {
		if !seen[be.Attribute] {
			seen[be.Attribute] = true
			attrs = append(attrs, be.Attribute)
		}
	}
	sort.Ints(attrs)
	return
}

// MaxBdrAttribute returns the largest boundary attribute, 0 without boundary
func (m *Mesh) MaxBdrAttribute() (mx int) {
	for _, a := range m.BdrAttributes() {
		mx = max(mx, a)
	}
	return
}

// BoundingBox returns the lower left and upper right corners of the mesh
func (m *Mesh) BoundingBox() (lo, hi [2]float64) {
	lo = [2]float64{math.Inf(1), math.Inf(1)}
	hi = [2]float64{math.Inf(-1), math.Inf(-1)}
	for _, v := range m.Vertices {
		for d := 0; d < 2; d++ {
			lo[d] = math.Min(lo[d], v[d])
			hi[d] = math.Max(hi[d], v[d])
		}
	}
	return
}

// Triangles lists the mesh as triangles, quads split along their 0-2 diagonal
func (m *Mesh) Triangles() (tris [][3]int) {
	for k, el := range m.Elements {
		switch m.ElementTypes[k] {
		case Triangle:
			tris = append(tris, [3]int{el[0], el[1], el[2]})
		case Quad:
			tris = append(tris, [3]int{el[0], el[1], el[2]}, [3]int{el[0], el[2], el[3]})
		}
	}
	return
}

// ElementCoords returns the vertex coordinates of element k
func (m *Mesh) ElementCoords(k int) (coords [][2]float64) {
	coords = make([][2]float64, len(m.Elements[k]))
	for i, v := range m.Elements[k] {
		coords[i] = m.Vertices[v]
	}
	return
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics() {
	fmt.Printf("Mesh Statistics:\n")
	fmt.Printf("  Vertices: %d\n", m.NumVertices)
	fmt.Printf("  Elements: %d\n", m.NumElements)
	fmt.Printf("  Edges: %d\n", len(m.Edges))
	fmt.Printf("  Boundary edges: %d\n", len(m.Boundary))

	typeCounts := make(map[ElementType]int)
	for _, t := range m.ElementTypes {
		typeCounts[t]++
	}
	fmt.Printf("  Element types:\n")
	for _, t := range []ElementType{Triangle, Quad} {
		if count, ok := typeCounts[t]; ok {
			fmt.Printf("    %s: %d\n", t, count)
		}
	}
	lo, hi := m.BoundingBox()
	fmt.Printf("Bounding Box:\nXMin/XMax = %5.3f, %5.3f\nYMin/YMax = %5.3f, %5.3f\n",
		lo[0], hi[0], lo[1], hi[1])
	fmt.Printf("  Boundary attributes: %v\n", m.BdrAttributes())
}
