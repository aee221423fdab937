//go:build !statsview

package statsview

import "io"

// Address the server would listen on.
const Address = "localhost:12600"

// Launch only turns on the periodic machine summary without the statsview
// build tag.
func Launch(_ io.Writer, m *Monitor, logEvery uint64) {
	m.SetLogEvery(logEvery)
}

// Available reports whether Launch serves anything.
func Available() bool {
	return false
}
