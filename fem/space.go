package fem

import (
	"fmt"
	"sort"

	"github.com/notargets/gofem2d/mesh"
)

// H1Collection is the family of continuous Lagrange elements of one order
type H1Collection struct {
	Order    int
	elements map[mesh.ElementType]*FiniteElement
}

// NewH1Collection builds triangle and quadrilateral elements of order p
func NewH1Collection(p int) (fec *H1Collection, err error) {
	fec = &H1Collection{Order: p, elements: make(map[mesh.ElementType]*FiniteElement)}
	if fec.elements[mesh.Triangle], err = NewH1Triangle(p); err != nil {
		return nil, err
	}
	if fec.elements[mesh.Quad], err = NewH1Quad(p); err != nil {
		return nil, err
	}
	return
}

// Name mirrors the usual H1_<dim>D_P<order> naming
func (fec *H1Collection) Name() string {
	return fmt.Sprintf("H1_2D_P%d", fec.Order)
}

// FiniteElement returns the reference element for the geometry
func (fec *H1Collection) FiniteElement(geom mesh.ElementType) *FiniteElement {
	return fec.elements[geom]
}

// FiniteElementSpace numbers the global dofs of an H1 collection on a mesh.
// Vertex dofs come first (dof v is vertex v), then edge interior dofs
// oriented from the lower to the higher global vertex of the edge, then
// element interior dofs.
type FiniteElementSpace struct {
	Mesh *mesh.Mesh
	FEC  *H1Collection

	elemDofs      [][]int
	nVertexDofs   int
	nExposedDofs  int // Vertex plus edge dofs
	nDofs         int
	interiorStart []int // First interior dof of each element
}

// NewFiniteElementSpace builds the dof maps for the mesh
func NewFiniteElementSpace(m *mesh.Mesh, fec *H1Collection) (fes *FiniteElementSpace, err error) {
	if m.EToEdge == nil {
		if err = m.BuildConnectivity(); err != nil {
			return nil, err
		}
	}
	var (
		p       = fec.Order
		nEdgeIn = p - 1
	)
	fes = &FiniteElementSpace{
		Mesh:          m,
		FEC:           fec,
		elemDofs:      make([][]int, m.NumElements),
		nVertexDofs:   m.NumVertices,
		interiorStart: make([]int, m.NumElements),
	}
	fes.nExposedDofs = m.NumVertices + len(m.Edges)*nEdgeIn
	next := fes.nExposedDofs
	for k := 0; k < m.NumElements; k++ {
		fes.interiorStart[k] = next
		next += fec.FiniteElement(m.ElementTypes[k]).NumInteriorDofs
	}
	fes.nDofs = next

	for k := 0; k < m.NumElements; k++ {
		var (
			fe    = fec.FiniteElement(m.ElementTypes[k])
			verts = m.Elements[k]
			dofs  = make([]int, fe.Dof())
		)
		copy(dofs, verts)
		for i, pair := range mesh.LocalEdges(fe.Geom) {
			var (
				edge     = m.EToEdge[k][i]
				base     = m.NumVertices + edge*nEdgeIn
				reversed = verts[pair[0]] > verts[pair[1]]
			)
			for j := 0; j < nEdgeIn; j++ {
				g := base + j
				if reversed {
					g = base + nEdgeIn - 1 - j
				}
				dofs[fe.NumVertexDofs+i*nEdgeIn+j] = g
			}
		}
		for j := 0; j < fe.NumInteriorDofs; j++ {
			dofs[fe.NumExposedDofs()+j] = fes.interiorStart[k] + j
		}
		fes.elemDofs[k] = dofs
	}
	return
}

// NDofs is the total number of unknowns, GetTrueVSize in other libraries
func (fes *FiniteElementSpace) NDofs() int { return fes.nDofs }

// NExposedDofs is the number of vertex and edge dofs, the size of the
// statically condensed system
func (fes *FiniteElementSpace) NExposedDofs() int { return fes.nExposedDofs }

// NVertexDofs is the number of vertex dofs
func (fes *FiniteElementSpace) NVertexDofs() int { return fes.nVertexDofs }

// GetNE returns the number of mesh elements
func (fes *FiniteElementSpace) GetNE() int { return fes.Mesh.NumElements }

// GetFE returns the reference element of element k
func (fes *FiniteElementSpace) GetFE(k int) *FiniteElement {
	return fes.FEC.FiniteElement(fes.Mesh.ElementTypes[k])
}

// ElementDofs returns the global dofs of element k in local dof order
func (fes *FiniteElementSpace) ElementDofs(k int) []int { return fes.elemDofs[k] }

// BoundaryEdgeDofs returns the global dofs lying on boundary edge b
func (fes *FiniteElementSpace) BoundaryEdgeDofs(b int) (dofs []int) {
	var (
		be   = fes.Mesh.Boundary[b]
		fe   = fes.GetFE(be.Element)
		edof = fes.elemDofs[be.Element]
	)
	for _, l := range fe.EdgeDofs(be.LocalEdge) {
		dofs = append(dofs, edof[l])
	}
	return
}

// GetEssentialTrueDofs lists the sorted dofs on boundary edges whose
// attribute is marked. marker[a-1] != 0 marks boundary attribute a.
func (fes *FiniteElementSpace) GetEssentialTrueDofs(marker []int) (dofs []int) {
	seen := make(map[int]bool)
	for b, be := range fes.Mesh.Boundary {
		a := be.Attribute - 1
		if a < 0 || a >= len(marker) || marker[a] == 0 {
			continue
		}
		for _, d := range fes.BoundaryEdgeDofs(b) {
			if !seen[d] {
				seen[d] = true
				dofs = append(dofs, d)
			}
		}
	}
	sort.Ints(dofs)
	return
}

// BdrMarker returns a marker sized for the mesh boundary attributes with the
// listed attributes set, or all of them when none are listed and all is true
func (fes *FiniteElementSpace) BdrMarker(all bool, attrs ...int) (marker []int) {
	marker = make([]int, fes.Mesh.MaxBdrAttribute())
	if all {
		for i := range marker {
			marker[i] = 1
		}
		return
	}
	for _, a := range attrs {
		if a >= 1 && a <= len(marker) {
			marker[a-1] = 1
		}
	}
	return
}
