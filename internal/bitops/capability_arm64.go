//go:build arm64

package bitops

import "golang.org/x/sys/cpu"

func init() {
	// CNT is baseline NEON; every ARM64 target Go supports has it.
	hasHardwarePopcount = cpu.ARM64.HasASIMD
	initKernels()
}
