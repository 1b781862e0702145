package compute

// SerialBackend runs every stage on the calling goroutine. Useful for
// deterministic tests and tiny scenes.
type SerialBackend struct{}

func NewSerialBackend() *SerialBackend { return &SerialBackend{} }

func (SerialBackend) Name() string { return "serial" }
func (SerialBackend) Workers() int { return 1 }
func (SerialBackend) Close()       {}

func (SerialBackend) Dispatch(n int, fn func(start, end int)) {
	if n > 0 {
		fn(0, n)
	}
}
