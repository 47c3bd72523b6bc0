// Package command runs external tools and captures their output.
//
// A [Runner] abstracts process execution so that packages driving docker
// can be tested with a fake. [ExecRunner] is the host implementation and can
// optionally mirror output to a stream while capturing it.
package command
