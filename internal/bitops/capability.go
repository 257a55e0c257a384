package bitops

// hasHardwarePopcount is set by platform-specific init functions when the
// CPU counts bits in a word-sized register natively. It gates the
// word-at-a-time kernels; the table kernels remain the portable default.
var hasHardwarePopcount bool

// initKernels is called from platform-specific init functions after CPU
// features are detected.
func initKernels() {
	if hasHardwarePopcount {
		kernelDot1x1 = dot1x1Words
		kernelBatchDot1x1 = batchDot1x1Words
	}
}

// ActiveKernel reports which 1-bit kernel variant is in use, for
// diagnostics and tests.
func ActiveKernel() string {
	if hasHardwarePopcount {
		return "words"
	}
	return "table"
}
