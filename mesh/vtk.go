package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
)

const (
	vtkTriangle = 5
	vtkQuad     = 9
)

// WriteVTK writes the mesh as a legacy ASCII VTK unstructured grid. Each entry
// of pointData must hold one value per mesh vertex. Element attributes and
// partition ids are written as cell data.
func (m *Mesh) WriteVTK(w io.Writer, title string, pointData map[string][]float64) (err error) {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# vtk DataFile Version 3.0\n%s\nASCII\nDATASET UNSTRUCTURED_GRID\n", title)
	fmt.Fprintf(bw, "POINTS %d double\n", len(m.Vertices))
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "%.8g %.8g 0\n", v[0], v[1])
	}
	var size int
	for _, el := range m.Elements {
		size += len(el) + 1
	}
	fmt.Fprintf(bw, "CELLS %d %d\n", len(m.Elements), size)
	for _, el := range m.Elements {
		fmt.Fprintf(bw, "%d", len(el))
		for _, v := range el {
			fmt.Fprintf(bw, " %d", v)
		}
		fmt.Fprintln(bw)
	}
	fmt.Fprintf(bw, "CELL_TYPES %d\n", len(m.Elements))
	for _, et := range m.ElementTypes {
		switch et {
		case Triangle:
			fmt.Fprintln(bw, vtkTriangle)
		case Quad:
			fmt.Fprintln(bw, vtkQuad)
		}
	}
	fmt.Fprintf(bw, "CELL_DATA %d\nSCALARS attribute int 1\nLOOKUP_TABLE default\n", len(m.Elements))
	for _, a := range m.Attributes {
		fmt.Fprintln(bw, a)
	}
	if len(m.EToP) == len(m.Elements) {
		fmt.Fprintf(bw, "SCALARS partition int 1\nLOOKUP_TABLE default\n")
		for _, p := range m.EToP {
			fmt.Fprintln(bw, p)
		}
	}
	if len(pointData) != 0 {
		names := make([]string, 0, len(pointData))
		for name := range pointData {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(bw, "POINT_DATA %d\n", len(m.Vertices))
		for _, name := range names {
			vals := pointData[name]
			if len(vals) != len(m.Vertices) {
				return fmt.Errorf("field %s has %d values, mesh has %d vertices",
					name, len(vals), len(m.Vertices))
			}
			fmt.Fprintf(bw, "SCALARS %s double 1\nLOOKUP_TABLE default\n", name)
			for _, v := range vals {
				fmt.Fprintf(bw, "%.8g\n", v)
			}
		}
	}
	return bw.Flush()
}

// SaveVTK writes the mesh and point fields to a file
func (m *Mesh) SaveVTK(filename, title string, pointData map[string][]float64) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err = m.WriteVTK(file, title, pointData); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return file.Close()
}
