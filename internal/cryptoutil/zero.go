package cryptoutil

import "runtime"

// Zero overwrites b with zero bytes. session.Record.ClearKey uses it on the session
// key once it is no longer needed; runtime.KeepAlive keeps the
// compiler from proving the write dead and eliding it.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
