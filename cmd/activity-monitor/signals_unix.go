//go:build !windows

package main

import (
	"os"
	"syscall"
)

var watchedSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGHUP}

func actionFor(sig os.Signal) signalAction {
	switch sig {
	case os.Interrupt, syscall.SIGTERM:
		return actionStop
	case syscall.SIGUSR1:
		return actionToggle
	case syscall.SIGHUP:
		return actionReload
	default:
		return actionNone
	}
}
