// Package cli provides the interactive Glider command-line client.
//
// It wires configuration and the gRPC vault client into a REPL. Each line is
// a command followed by its flags and arguments, for example:
//
//	generate -tail gmail -length 20 -numbers -upper
//	list -type GENERATED mail
//	copy 0c0b1f3e-...
//
// Secrets typed by the user are read without echo. The REPL is started via
// App.Run(ctx), which blocks until the user exits. See runREPL for the full
// command list.
package cli
