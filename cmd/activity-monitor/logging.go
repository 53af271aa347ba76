package main

import (
	"io"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("activity-monitor")

// InitLogger sets the go-logging backend to w at the given level name
// (DEBUG, INFO, WARNING, ERROR, CRITICAL). An unknown level is an error.
func InitLogger(logLevel string, w io.Writer) error {
	baseBackend := logging.NewLogBackend(w, "", 0)
	format := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05} %{level:.5s} %{shortpkg:-8s} %{message}`,
	)
	backendFormatter := logging.NewBackendFormatter(baseBackend, format)

	backendLeveled := logging.AddModuleLevel(backendFormatter)
	logLevelCode, err := logging.LogLevel(logLevel)
	if err != nil {
		return err
	}
	backendLeveled.SetLevel(logLevelCode, "")

	logging.SetBackend(backendLeveled)
	return nil
}
