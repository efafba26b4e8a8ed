//go:build linux

package cmd

import (
	"log"

	"github.com/hodgesds/perf-utils"
)

func countInstructions(run func() error) (err error) {
	var ran bool
	pv, perr := perf.CPUInstructions(func() error {
		ran = true
		err = run()
		return err
	})
	switch {
	case !ran:
		log.Printf("hardware counters unavailable, running uncounted: %v", perr)
		return run()
	case err != nil:
		return
	case perr != nil:
		log.Printf("reading instruction counter: %v", perr)
	default:
		log.Printf("CPU instructions: %d", pv.Value)
	}
	return
}
