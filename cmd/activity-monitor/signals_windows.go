//go:build windows

package main

import "os"

var watchedSignals = []os.Signal{os.Interrupt}

func actionFor(sig os.Signal) signalAction {
	if sig == os.Interrupt {
		return actionStop
	}
	return actionNone
}
