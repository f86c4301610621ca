//go:build !linux && !darwin

package worker

import "syscall"

// Platforms without SO_REUSEPORT fall back to a plain bind; only one worker
// can own the port there, so supervisors should run a single worker.
func reusePortControl(network, address string, c syscall.RawConn) error { return nil }
