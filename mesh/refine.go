package mesh

// UniformRefinement splits every element into four children using edge
// midpoints (plus a centre vertex for quadrilaterals). Element and boundary
// attributes are inherited by the children and connectivity is rebuilt.
func (m *Mesh) UniformRefinement() error {
	if m.EdgeMap == nil {
		if err := m.BuildConnectivity(); err != nil {
			return err
		}
	}
	var (
		edgeMid = make([]int, len(m.Edges))
		oldEl   = m.Elements
		oldET   = m.ElementTypes
		oldAttr = m.Attributes
		oldBdr  = m.Boundary
	)
	for id, e := range m.Edges {
		a, b := m.Vertices[e.Vertices[0]], m.Vertices[e.Vertices[1]]
		edgeMid[id] = len(m.Vertices)
		m.Vertices = append(m.Vertices, [2]float64{0.5 * (a[0] + b[0]), 0.5 * (a[1] + b[1])})
	}
	m.Elements, m.ElementTypes, m.Attributes = nil, nil, nil
	for k, v := range oldEl {
		var (
			attr = oldAttr[k]
			em   = m.EToEdge[k]
		)
		switch oldET[k] {
		case Triangle:
			m01, m12, m20 := edgeMid[em[0]], edgeMid[em[1]], edgeMid[em[2]]
			m.AddElement(Triangle, []int{v[0], m01, m20}, attr)
			m.AddElement(Triangle, []int{m01, v[1], m12}, attr)
			m.AddElement(Triangle, []int{m20, m12, v[2]}, attr)
			m.AddElement(Triangle, []int{m01, m12, m20}, attr)
		case Quad:
			m01, m12, m23, m30 := edgeMid[em[0]], edgeMid[em[1]], edgeMid[em[2]], edgeMid[em[3]]
			var cx, cy float64
			for _, vi := range v {
				cx += 0.25 * m.Vertices[vi][0]
				cy += 0.25 * m.Vertices[vi][1]
			}
			c := len(m.Vertices)
			m.Vertices = append(m.Vertices, [2]float64{cx, cy})
			m.AddElement(Quad, []int{v[0], m01, c, m30}, attr)
			m.AddElement(Quad, []int{m01, v[1], m12, c}, attr)
			m.AddElement(Quad, []int{c, m12, v[2], m23}, attr)
			m.AddElement(Quad, []int{m30, c, m23, v[3]}, attr)
		}
	}
	m.Boundary = make([]BoundaryEdge, 0, 2*len(oldBdr))
	for _, be := range oldBdr {
		mid := edgeMid[be.Edge]
		m.Boundary = append(m.Boundary,
			BoundaryEdge{Vertices: [2]int{be.Vertices[0], mid}, Attribute: be.Attribute},
			BoundaryEdge{Vertices: [2]int{mid, be.Vertices[1]}, Attribute: be.Attribute})
	}
	m.EToP = nil
	return m.BuildConnectivity()
}
