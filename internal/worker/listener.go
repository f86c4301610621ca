package worker

import (
	"context"
	"net"
)

// Listen binds the worker's listener. With SO_REUSEPORT (where available)
// every worker binds the same address independently and the kernel spreads
// accepted connections across them; a worker therefore only ever binds after
// its model handle finished loading.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{Control: reusePortControl}
	return lc.Listen(ctx, "tcp", addr)
}
