package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
const (
	su2Line          = 3
	su2Triangle      = 5
	su2Quadrilateral = 9
)

// ReadSU2 reads a 2D SU2 native format file
func ReadSU2(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	m, err := ParseSU2(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return m, nil
}

// ParseSU2 parses a 2D SU2 stream. Markers become boundary attributes numbered
// from 1 in order of appearance, with the marker tag kept in BoundaryTags.
func ParseSU2(r io.Reader) (*Mesh, error) {
	var (
		mesh    = NewMesh()
		scanner = bufio.NewScanner(r)
		ndime   int
		elems   [][]int
		etypes  []ElementType
	)
	// next returns the next line that is neither empty nor a comment
	next := func() (string, error) {
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "%") {
				continue
			}
			return line, nil
		}
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	value := func(line, key string) (string, error) {
		if !strings.HasPrefix(line, key) {
			return "", fmt.Errorf("expected %s, got %q", key, line)
		}
		return strings.TrimSpace(strings.TrimPrefix(line, key)), nil
	}
	count := func(line, key string) (int, error) {
		v, err := value(line, key)
		if err != nil {
			return 0, err
		}
		fields := strings.Fields(v)
		if len(fields) == 0 {
			return 0, fmt.Errorf("missing count after %s", key)
		}
		return strconv.Atoi(fields[0])
	}

	for {
		line, err := next()
		if err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch {
		case strings.HasPrefix(line, "NDIME="):
			if ndime, err = count(line, "NDIME="); err != nil {
				return nil, err
			}
			if ndime != 2 {
				return nil, fmt.Errorf("only 2D meshes are supported, got NDIME=%d", ndime)
			}

		case strings.HasPrefix(line, "NELEM="):
			nelem, err := count(line, "NELEM=")
			if err != nil {
				return nil, err
			}
			for i := 0; i < nelem; i++ {
				if line, err = next(); err != nil {
					return nil, err
				}
				fields := strings.Fields(line)
				su2Type, _ := strconv.Atoi(fields[0])
				var (
					et ElementType
					nv int
				)
				switch su2Type {
				case su2Triangle:
					et, nv = Triangle, 3
				case su2Quadrilateral:
					et, nv = Quad, 4
				default:
					return nil, fmt.Errorf("unsupported SU2 element type %d", su2Type)
				}
				if len(fields) < nv+1 {
					return nil, fmt.Errorf("element line too short: %q", line)
				}
				verts := make([]int, nv)
				for j := range verts {
					if verts[j], err = strconv.Atoi(fields[1+j]); err != nil {
						return nil, err
					}
				}
				elems = append(elems, verts)
				etypes = append(etypes, et)
			}

		case strings.HasPrefix(line, "NPOIN="):
			npoin, err := count(line, "NPOIN=")
			if err != nil {
				return nil, err
			}
			mesh.Vertices = make([][2]float64, npoin)
			for i := 0; i < npoin; i++ {
				if line, err = next(); err != nil {
					return nil, err
				}
				fields := strings.Fields(line)
				if len(fields) < 2 {
					return nil, fmt.Errorf("unable to read coordinates from %q", line)
				}
				x, errx := strconv.ParseFloat(fields[0], 64)
				y, erry := strconv.ParseFloat(fields[1], 64)
				if errx != nil || erry != nil {
					return nil, fmt.Errorf("unable to read coordinates from %q", line)
				}
				mesh.Vertices[i] = [2]float64{x, y}
			}

		case strings.HasPrefix(line, "NMARK="):
			nmark, err := count(line, "NMARK=")
			if err != nil {
				return nil, err
			}
			for i := 0; i < nmark; i++ {
				attr := i + 1
				if line, err = next(); err != nil {
					return nil, err
				}
				tag, err := value(line, "MARKER_TAG=")
				if err != nil {
					return nil, err
				}
				mesh.BoundaryTags[attr] = tag
				if line, err = next(); err != nil {
					return nil, err
				}
				nm, err := count(line, "MARKER_ELEMS=")
				if err != nil {
					return nil, err
				}
				for j := 0; j < nm; j++ {
					if line, err = next(); err != nil {
						return nil, err
					}
					var nType, v1, v2 int
					if _, err = fmt.Sscanf(line, "%d %d %d", &nType, &v1, &v2); err != nil {
						return nil, err
					}
					if nType != su2Line {
						return nil, fmt.Errorf("markers should only contain line elements in 2D")
					}
					mesh.Boundary = append(mesh.Boundary,
						BoundaryEdge{Vertices: [2]int{v1, v2}, Attribute: attr})
				}
			}
		}
	}
	if len(elems) == 0 || len(mesh.Vertices) == 0 {
		return nil, fmt.Errorf("missing NELEM or NPOIN section")
	}
	// Elements precede points in SU2 files, so orientation is fixed up here
	for k, v := range elems {
		for _, vi := range v {
			if vi < 0 || vi >= len(mesh.Vertices) {
				return nil, fmt.Errorf("element %d references vertex %d out of range", k, vi)
			}
		}
		mesh.AddElement(etypes[k], v, 1)
	}
	if err := mesh.BuildConnectivity(); err != nil {
		return nil, err
	}
	return mesh, nil
}
