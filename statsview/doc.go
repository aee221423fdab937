// Package statsview reports machine statistics while a program runs.
//
// A Monitor is fed the core statistics once per frame by the host loop and
// can be read from any goroutine. Built with the statsview tag, Launch also
// serves the Go runtime graphs:
//
//	go build -tags statsview ./cmd/c8sim
//
// at localhost:12600/debug/statsview.
package statsview
