//go:build statsview

package statsview

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Address the server listens on.
const Address = "localhost:12600"

// Launch serves the Go runtime graphs on Address and has m log a machine
// summary every logEvery frames while the program runs.
func Launch(output io.Writer, m *Monitor, logEvery uint64) {
	m.SetLogEvery(logEvery)

	viewer.SetConfiguration(viewer.WithAddr(Address))
	mgr := statsview.New()
	go mgr.Start()

	fmt.Fprintf(output, "runtime graphs at http://%s/debug/statsview, machine summary every %d frames in the log\n",
		Address, logEvery)
}

// Available reports whether Launch serves anything.
func Available() bool {
	return true
}
