package mesh

import (
	"fmt"
	"log"

	metis "github.com/notargets/go-metis"

	"github.com/notargets/gofem2d/utils"
)

// PartitionConfig holds configuration for mesh partitioning
type PartitionConfig struct {
	NumPartitions   int32
	ImbalanceFactor float32 // e.g., 1.05 for 5% imbalance
	Objective       string  // "cut", "vol" or "block"
}

// DefaultPartitionConfig returns default partitioning configuration
func DefaultPartitionConfig(nparts int32) *PartitionConfig {
	return &PartitionConfig{
		NumPartitions:   nparts,
		ImbalanceFactor: 1.05,
		Objective:       "cut", // minimize shared edges, each one is a shared row in assembly
	}
}

// Partition assigns every element to one of nparts partitions (EToP) using the
// METIS k-way partitioner on the element dual graph. Fewer than two parts
// places every element in partition 0.
func (m *Mesh) Partition(nparts int) error {
	return m.PartitionWith(DefaultPartitionConfig(int32(nparts)))
}

// PartitionWith partitions the mesh with an explicit configuration
func (m *Mesh) PartitionWith(config *PartitionConfig) error {
	m.EToP = make([]int, m.NumElements)
	if config.NumPartitions < 2 {
		return nil
	}
	if int(config.NumPartitions) > m.NumElements {
		return fmt.Errorf("cannot split %d elements into %d partitions",
			m.NumElements, config.NumPartitions)
	}
	if config.Objective == "block" {
		// Contiguous element ranges, no graph partitioning
		pm := utils.NewPartitionMap(int(config.NumPartitions), m.NumElements)
		for k := range m.EToP {
			m.EToP[k], _, _ = pm.GetBucket(k)
		}
		return nil
	}
	if m.EToE == nil {
		if err := m.BuildConnectivity(); err != nil {
			return err
		}
	}
	log.Printf("Partitioning mesh with %d elements into %d parts",
		m.NumElements, config.NumPartitions)

	xadj, adjncy, vwgt := m.buildDualGraph()

	opts := make([]int32, metis.NoOptions)
	if err := metis.SetDefaultOptions(opts); err != nil {
		return fmt.Errorf("failed to set METIS options: %w", err)
	}
	if config.Objective == "vol" {
		opts[metis.OptionObjType] = metis.ObjTypeVol
	} else {
		opts[metis.OptionObjType] = metis.ObjTypeCut
	}
	ubvec := []float32{config.ImbalanceFactor}

	part, objval, err := metis.PartGraphKwayWeighted(
		xadj, adjncy, vwgt, nil,
		config.NumPartitions, nil, ubvec, opts,
	)
	if err != nil {
		return fmt.Errorf("METIS partitioning failed: %w", err)
	}
	for k := 0; k < m.NumElements; k++ {
		m.EToP[k] = int(part[k])
	}
	counts := m.PartitionSizes()
	log.Printf("Partition edge cut = %d, elements per partition = %v", objval, counts)
	return nil
}

// buildDualGraph converts element adjacency to METIS CSR format. Vertex
// weights are the number of element vertices, a proxy for assembly cost.
func (m *Mesh) buildDualGraph() (xadj, adjncy, vwgt []int32) {
	ne := m.NumElements
	xadj = make([]int32, ne+1)
	vwgt = make([]int32, ne)
	for k := 0; k < ne; k++ {
		vwgt[k] = int32(len(m.Elements[k]))
		for _, nb := range m.EToE[k] {
			if nb >= 0 && nb != k {
				adjncy = append(adjncy, int32(nb))
			}
		}
		xadj[k+1] = int32(len(adjncy))
	}
	return
}

// NumPartitions returns the number of partitions in EToP
func (m *Mesh) NumPartitions() (np int) {
	if len(m.EToP) == 0 {
		return 1
	}
	for _, p := range m.EToP {
		np = max(np, p+1)
	}
	return
}

// PartitionSizes returns the element count of each partition
func (m *Mesh) PartitionSizes() (counts []int) {
	counts = make([]int, m.NumPartitions())
	if len(m.EToP) == 0 {
		counts[0] = m.NumElements
		return
	}
	for _, p := range m.EToP {
		counts[p]++
	}
	return
}

// PartitionElements returns the element list of each partition
func (m *Mesh) PartitionElements() (parts [][]int) {
	parts = make([][]int, m.NumPartitions())
	for k := 0; k < m.NumElements; k++ {
		p := 0
		if len(m.EToP) != 0 {
			p = m.EToP[k]
		}
		parts[p] = append(parts[p], k)
	}
	return
}
