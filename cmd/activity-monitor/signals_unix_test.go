//go:build !windows

package main

import (
	"context"
	"os"
	"syscall"
	"testing"
)

func TestActionFor(t *testing.T) {
	tests := []struct {
		sig  os.Signal
		want signalAction
	}{
		{os.Interrupt, actionStop},
		{syscall.SIGTERM, actionStop},
		{syscall.SIGUSR1, actionToggle},
		{syscall.SIGHUP, actionReload},
		{syscall.SIGUSR2, actionNone},
	}

	for _, tt := range tests {
		if got := actionFor(tt.sig); got != tt.want {
			t.Errorf("actionFor(%v) = %v, want %v", tt.sig, got, tt.want)
		}
	}
}

func TestApplicationRunHandlesToggleSignal(t *testing.T) {
	clearConfigEnv(t)
	deps, err := NewDependencies(defaultTestConfig(), "", testOptions(newTestClock()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer deps.Close()

	signals := make(chan os.Signal, 2)
	signals <- syscall.SIGUSR1
	signals <- syscall.SIGTERM

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := NewApplication(deps).Run(ctx, signals); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if deps.Config.Polling.Enabled {
		t.Error("expected toggle signal to disable polling")
	}
}
