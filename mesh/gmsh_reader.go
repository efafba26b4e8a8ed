package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadGmsh reads a 2D Gmsh file (ASCII version 2.2)
func ReadGmsh(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	m, err := ParseGmsh(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return m, nil
}

// ParseGmsh parses a 2D Gmsh 2.2 ASCII stream. Triangles and quadrilaterals
// (first or second order, corner nodes only) become elements, lines become
// boundary edges. The first element tag (physical group) is used as the
// attribute, with 0 mapped to 1.
func ParseGmsh(r io.Reader) (*Mesh, error) {
	var (
		mesh     = NewMesh()
		scanner  = bufio.NewScanner(r)
		version  string
		nodeID   = make(map[int]int)
		lines    [][3]int // v0, v1, tag
		hasNodes bool
	)
	next := func() ([]string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.ErrUnexpectedEOF
		}
		return strings.Fields(scanner.Text()), nil
	}
	count := func(what string) (n int, err error) {
		var fields []string
		if fields, err = next(); err != nil {
			return
		}
		if len(fields) == 0 {
			return 0, fmt.Errorf("missing %s count", what)
		}
		if n, err = strconv.Atoi(fields[0]); err != nil {
			return 0, fmt.Errorf("bad %s count: %w", what, err)
		}
		if n < 0 {
			return 0, fmt.Errorf("negative %s count %d", what, n)
		}
		return
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "$MeshFormat":
			fields, err := next()
			if err != nil {
				return nil, err
			}
			if len(fields) > 0 {
				version = fields[0]
			}
			if strings.HasPrefix(version, "4") {
				return nil, fmt.Errorf("Gmsh format version %s not supported, export as 2.2", version)
			}
			if len(fields) > 1 && fields[1] != "0" {
				return nil, fmt.Errorf("binary Gmsh files are not supported")
			}

		case "$Nodes":
			numNodes, err := count("node")
			if err != nil {
				return nil, err
			}
			mesh.Vertices = make([][2]float64, numNodes)
			for i := 0; i < numNodes; i++ {
				var fields []string
				if fields, err = next(); err != nil {
					return nil, err
				}
				if len(fields) < 3 {
					return nil, fmt.Errorf("bad node line %q", strings.Join(fields, " "))
				}
				id, err := strconv.Atoi(fields[0])
				if err != nil {
					return nil, err
				}
				x, errx := strconv.ParseFloat(fields[1], 64)
				y, erry := strconv.ParseFloat(fields[2], 64)
				if errx != nil || erry != nil {
					return nil, fmt.Errorf("bad coordinates for node %d", id)
				}
				nodeID[id] = i
				mesh.Vertices[i] = [2]float64{x, y}
			}
			hasNodes = true

		case "$Elements":
			if !hasNodes {
				return nil, fmt.Errorf("$Elements section before $Nodes")
			}
			numElems, err := count("element")
			if err != nil {
				return nil, err
			}
			for i := 0; i < numElems; i++ {
				var fields []string
				if fields, err = next(); err != nil {
					return nil, err
				}
				if len(fields) < 3 {
					continue
				}
				elemType, _ := strconv.Atoi(fields[1])
				numTags, err := strconv.Atoi(fields[2])
				if err != nil || numTags < 0 {
					return nil, fmt.Errorf("bad tag count in element line %q", strings.Join(fields, " "))
				}
				physTag := 0
				if numTags > 0 && len(fields) > 3 {
					physTag, _ = strconv.Atoi(fields[3])
				}
				if physTag == 0 {
					physTag = 1
				}
				var (
					numNodes int
					etype    ElementType
					isLine   bool
				)
				switch elemType {
				case 1, 8: // 2-node line, 3-node line
					numNodes, isLine = 2, true
				case 2, 9: // 3-node triangle, 6-node triangle
					numNodes, etype = 3, Triangle
				case 3, 10, 16: // 4-node quad, 9-node quad, 8-node quad
					numNodes, etype = 4, Quad
				default:
					continue
				}
				offset := 3 + numTags
				if len(fields) < offset+numNodes {
					return nil, fmt.Errorf("element line too short: %q", strings.Join(fields, " "))
				}
				verts := make([]int, numNodes)
				for j := 0; j < numNodes; j++ {
					v, _ := strconv.Atoi(fields[offset+j])
					idx, ok := nodeID[v]
					if !ok {
						return nil, fmt.Errorf("element references unknown node %d", v)
					}
					verts[j] = idx
				}
				if isLine {
					lines = append(lines, [3]int{verts[0], verts[1], physTag})
				} else {
					mesh.AddElement(etype, verts, physTag)
				}
			}

		case "$PhysicalNames":
			numPhysical, err := count("physical name")
			if err != nil {
				return nil, err
			}
			for i := 0; i < numPhysical; i++ {
				var fields []string
				if fields, err = next(); err != nil {
					return nil, err
				}
				if len(fields) >= 3 {
					dim, _ := strconv.Atoi(fields[0])
					tag, _ := strconv.Atoi(fields[1])
					if dim == 1 {
						mesh.BoundaryTags[tag] = strings.Trim(fields[2], "\"")
					}
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(mesh.Elements) == 0 {
		return nil, fmt.Errorf("no 2D elements found")
	}
	for _, l := range lines {
		mesh.Boundary = append(mesh.Boundary,
			BoundaryEdge{Vertices: [2]int{l[0], l[1]}, Attribute: l[2]})
	}
	if err := mesh.BuildConnectivity(); err != nil {
		return nil, err
	}
	return mesh, nil
}
