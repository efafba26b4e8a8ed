package utils

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/avs/chart2d"
	"github.com/notargets/avs/geometry"
	utils2 "github.com/notargets/avs/utils"
)

// NewTriMesh converts vertex coordinates and triangle vertex lists into an
// avs plotting mesh
func NewTriMesh(verts [][2]float64, tris [][3]int) (gm geometry.TriMesh) {
	gm = geometry.TriMesh{
		XY:       make([]float32, 2*len(verts)),
		TriVerts: make([][3]int64, len(tris)),
	}
	for i, v := range verts {
		gm.XY[2*i] = float32(v[0])
		gm.XY[2*i+1] = float32(v[1])
	}
	for k, tri := range tris {
		for n := 0; n < 3; n++ {
			gm.TriVerts[k][n] = int64(tri[n])
		}
	}
	return
}

// SurfacePlot shades a vertex field over a triangle mesh
type SurfacePlot struct {
	Chart        *chart2d.Chart2D
	GraphicsMesh *geometry.TriMesh
}

func NewSurfacePlot(width, height int, xmin, xmax, ymin, ymax float64,
	gm *geometry.TriMesh) (sp *SurfacePlot) {
	xMin, xMax, yMin, yMax := GetSquareBoundingBox(float32(xmin),
		float32(xmax), float32(ymin), float32(ymax))
	sp = &SurfacePlot{
		Chart: chart2d.NewChart2D(xMin, xMax, yMin, yMax, width, height,
			utils2.WHITE, utils2.BLACK, 0.9),
		GraphicsMesh: gm,
	}
	return
}

// AddFunctionSurface shades one value per mesh vertex between fmin and fmax
func (sp *SurfacePlot) AddFunctionSurface(field []float64, fmin, fmax float64) {
	pField := make([]float32, len(field))
	for i, f := range field {
		pField[i] = float32(f)
	}
	vs := geometry.VertexScalar{
		TMesh:       sp.GraphicsMesh,
		FieldValues: pField,
	}
	sp.Chart.AddShadedVertexScalar(&vs, float32(fmin), float32(fmax))
}

// AddMesh draws the element edges
func (sp *SurfacePlot) AddMesh() {
	sp.Chart.AddTriMesh(*sp.GraphicsMesh)
}

func GetSquareBoundingBox(xMin, xMax, yMin, yMax float32) (xBMin,
	xBMax, yBMin, yBMax float32) {
	xRange := xMax - xMin
	yRange := yMax - yMin
	if yRange > xRange {
		yBMin = yMin
		yBMax = yMax
		xCent := xRange/2. + xMin
		xBMin = xCent - yRange/2.
		xBMax = xCent + yRange/2.
	} else {
		xBMin = xMin
		xBMax = xMax
		yCent := yRange/2. + yMin
		yBMin = yCent - xRange/2.
		yBMax = yCent + xRange/2.
	}
	return
}

// PlotVertexField shades one value per vertex over the triangles and keeps
// the window up for the hold duration
func PlotVertexField(verts [][2]float64, tris [][3]int, field []float64, hold time.Duration) {
	var (
		gm         = NewTriMesh(verts, tris)
		xMin, xMax = math.Inf(1), math.Inf(-1)
		yMin, yMax = math.Inf(1), math.Inf(-1)
	)
	for _, v := range verts {
		xMin, xMax = math.Min(xMin, v[0]), math.Max(xMax, v[0])
		yMin, yMax = math.Min(yMin, v[1]), math.Max(yMax, v[1])
	}
	sp := NewSurfacePlot(1024, 1024, xMin, xMax, yMin, yMax, &gm)
	sp.AddFunctionSurface(field, floats.Min(field), floats.Max(field))
	sp.AddMesh()
	time.Sleep(hold)
}
