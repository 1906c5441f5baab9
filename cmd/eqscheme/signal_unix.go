// POSIX signal handling for leaving watch mode.
//
// This file is compiled on all non-Windows platforms. Both SIGINT (Ctrl+C)
// and SIGTERM stop the watch loop after the render in progress finishes.

//go:build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// ///////////////////////////////////////////////
// Signal Handling
// ///////////////////////////////////////////////

// signalChannel returns a buffered channel that receives SIGINT and SIGTERM.
func signalChannel() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return ch
}
