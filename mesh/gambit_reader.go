package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadGambitNeutral reads a 2D Gambit neutral file
func ReadGambitNeutral(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	m, err := ParseGambitNeutral(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return m, nil
}

// ParseGambitNeutral parses a 2D Gambit neutral stream. Element groups set the
// element attribute, boundary condition sets become boundary attributes
// numbered from 1 in order of appearance.
func ParseGambitNeutral(r io.Reader) (*Mesh, error) {
	var (
		mesh         = NewMesh()
		scanner      = bufio.NewScanner(r)
		numnp, nelem int
		nbsets       int
		nsd          = 2
		elems        [][]int
		etypes       []ElementType
		attrs        []int
		bdr          [][3]int // element, face, attribute
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
	atoi := func(s string) int {
		v, _ := strconv.Atoi(s)
		return v
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "NUMNP"):
			fields, err := next()
			if err != nil {
				return nil, err
			}
			if len(fields) < 5 {
				return nil, fmt.Errorf("short header line %q", strings.Join(fields, " "))
			}
			numnp, nelem, nbsets, nsd = atoi(fields[0]), atoi(fields[1]), atoi(fields[3]), atoi(fields[4])
			if nsd != 2 {
				return nil, fmt.Errorf("only 2D meshes are supported, got %d space dimensions", nsd)
			}
			if numnp < 0 || nelem < 0 {
				return nil, fmt.Errorf("bad header counts NUMNP=%d NELEM=%d", numnp, nelem)
			}
			elems = make([][]int, nelem)
			etypes = make([]ElementType, nelem)
			attrs = make([]int, nelem)
			for i := range attrs {
				attrs[i] = 1
			}

		case strings.HasPrefix(line, "NODAL COORDINATES"):
			mesh.Vertices = make([][2]float64, numnp)
			for i := 0; i < numnp; i++ {
				fields, err := next()
				if err != nil {
					return nil, err
				}
				if len(fields) < 3 {
					return nil, fmt.Errorf("bad node line %q", strings.Join(fields, " "))
				}
				id := atoi(fields[0])
				if id < 1 || id > numnp {
					return nil, fmt.Errorf("node id %d out of range", id)
				}
				x, errx := strconv.ParseFloat(fields[1], 64)
				y, erry := strconv.ParseFloat(fields[2], 64)
				if errx != nil || erry != nil {
					return nil, fmt.Errorf("bad coordinates for node %d", id)
				}
				mesh.Vertices[id-1] = [2]float64{x, y}
			}

		case strings.HasPrefix(line, "ELEMENTS/CELLS"):
			for i := 0; i < nelem; i++ {
				fields, err := next()
				if err != nil {
					return nil, err
				}
				if len(fields) < 3 {
					return nil, fmt.Errorf("bad element line %q", strings.Join(fields, " "))
				}
				id, typ, nn := atoi(fields[0]), atoi(fields[1]), atoi(fields[2])
				if id < 1 || id > nelem {
					return nil, fmt.Errorf("element id %d out of range", id)
				}
				switch typ {
				case 2:
					etypes[id-1] = Quad
				case 3:
					etypes[id-1] = Triangle
				default:
					return nil, fmt.Errorf("unsupported Gambit element type %d", typ)
				}
				if nn != etypes[id-1].NumVertices() {
					return nil, fmt.Errorf("element %d has %d nodes, expected %d", id, nn, etypes[id-1].NumVertices())
				}
				if len(fields) < 3+nn {
					return nil, fmt.Errorf("element %d lists fewer than %d nodes", id, nn)
				}
				verts := make([]int, nn)
				for j := range verts {
					v := atoi(fields[3+j])
					if v < 1 || v > numnp {
						return nil, fmt.Errorf("element %d references node %d, NUMNP is %d", id, v, numnp)
					}
					verts[j] = v - 1
				}
				elems[id-1] = verts
			}

		case strings.HasPrefix(line, "GROUP:"):
			// GROUP:           1 ELEMENTS:        977 MATERIAL:      1.000 NFLAGS:          0
			var gn, elnum, nflags int
			f := strings.Fields(line)
			for i := 0; i+1 < len(f); i++ {
				switch f[i] {
				case "GROUP:":
					gn = atoi(f[i+1])
				case "ELEMENTS:":
					elnum = atoi(f[i+1])
				case "NFLAGS:":
					nflags = atoi(f[i+1])
				}
			}
			// Title, then the flag values
			if _, err := next(); err != nil {
				return nil, err
			}
			for read := 0; read < nflags; {
				fields, err := next()
				if err != nil {
					return nil, err
				}
				read += len(fields)
			}
			for read := 0; read < elnum; {
				fields, err := next()
				if err != nil {
					return nil, err
				}
				for _, s := range fields {
					k := atoi(s) - 1
					if k >= 0 && k < nelem {
						attrs[k] = gn
					}
				}
				read += len(fields)
			}

		case strings.HasPrefix(line, "BOUNDARY CONDITIONS"):
			fields, err := next()
			if err != nil {
				return nil, err
			}
			if len(fields) < 3 {
				return nil, fmt.Errorf("bad boundary header %q", strings.Join(fields, " "))
			}
			attr := len(mesh.BoundaryTags) + 1
			mesh.BoundaryTags[attr] = strings.ToLower(fields[0])
			numfaces := atoi(fields[2])
			for i := 0; i < numfaces; i++ {
				if fields, err = next(); err != nil {
					return nil, err
				}
				if len(fields) < 3 {
					return nil, fmt.Errorf("bad boundary face line %q", strings.Join(fields, " "))
				}
				bdr = append(bdr, [3]int{atoi(fields[0]) - 1, atoi(fields[2]) - 1, attr})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if nelem == 0 || len(mesh.Vertices) == 0 {
		return nil, fmt.Errorf("missing header, node or element section")
	}
	if nbsets != len(mesh.BoundaryTags) {
		return nil, fmt.Errorf("header declares %d boundary sets, found %d", nbsets, len(mesh.BoundaryTags))
	}
	for k := range elems {
		if elems[k] == nil {
			return nil, fmt.Errorf("element %d missing", k+1)
		}
	}
	// Faces are numbered on the input vertex order, so resolve them before
	// elements are re-oriented
	for _, b := range bdr {
		k, face := b[0], b[1]
		if k < 0 || k >= nelem {
			return nil, fmt.Errorf("boundary face references element %d out of range", k+1)
		}
		nv := len(elems[k])
		if face < 0 || face >= nv {
			return nil, fmt.Errorf("element %d has no face %d", k+1, face+1)
		}
		mesh.Boundary = append(mesh.Boundary, BoundaryEdge{
			Vertices:  [2]int{elems[k][face], elems[k][(face+1)%nv]},
			Attribute: b[2],
		})
	}
	for k := range elems {
		mesh.AddElement(etypes[k], elems[k], attrs[k])
	}
	if err := mesh.BuildConnectivity(); err != nil {
		return nil, err
	}
	return mesh, nil
}
