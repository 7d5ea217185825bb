package dataflow

// A Trace tells how expensive the processes of a graph are.
type Trace interface {
	// AccumulateProcessorCycles returns, per processor type, the number of
	// cycles the process needs over its whole execution. Processor types
	// that cannot execute the process are absent.
	AccumulateProcessorCycles(process string) (map[string]float64, error)
}
