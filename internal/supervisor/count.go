// Package supervisor spawns and oversees the worker processes. Each worker is
// a full copy of the serving pipeline with its own model handle; the
// supervisor only forwards signals and propagates failures. Restarting failed
// workers is left to the external process manager.
package supervisor

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
)

// WorkerCount resolves how many worker processes to run. An explicit hint
// wins; otherwise the classic 2*cores+1 heuristic applies, capped by ceiling
// so small hosts are not oversubscribed with model copies (each worker holds
// the full weights in memory).
func WorkerCount(hint, ceiling int) int {
	if ceiling <= 0 {
		ceiling = 1
	}
	if hint > 0 {
		if hint > ceiling {
			return ceiling
		}
		return hint
	}
	cores, err := cpu.Counts(true)
	if err != nil || cores <= 0 {
		cores = runtime.NumCPU()
	}
	n := 2*cores + 1
	if n > ceiling {
		return ceiling
	}
	return n
}
