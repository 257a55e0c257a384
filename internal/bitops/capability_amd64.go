//go:build amd64

package bitops

import "golang.org/x/sys/cpu"

func init() {
	hasHardwarePopcount = cpu.X86.HasPOPCNT
	initKernels()
}
