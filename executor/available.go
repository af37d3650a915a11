package executor

// Available returns every executor that can be constructed in the current
// environment: Sequential and HostParallel always, plus an Accelerator when
// an OCCA device initializes. Callers iterating the result for tests should
// free any Accelerator entries when done.
func Available() []Executor {
	execs := []Executor{NewSequential(), NewHostParallel()}
	if acc, err := NewAccelerator(); err == nil {
		execs = append(execs, acc)
	}
	return execs
}
