package classifier

import (
	"context"
	"time"
)

// beginInference reserves a queue slot and then the single in-flight slot.
// Returns a release func to be called once the forward pass has finished
// touching the tensor buffers.
func (h *Handle) beginInference(ctx context.Context) (func(), error) {
	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timer := time.NewTimer(h.maxWait)
	defer timer.Stop()
	select {
	case h.queueCh <- struct{}{}:
		// reserved queue slot
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, tooBusyError{}
	}

	acquired := false
	defer func() {
		if !acquired {
			<-h.queueCh
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timer2 := time.NewTimer(h.maxWait)
	defer timer2.Stop()
	select {
	case h.inflightCh <- struct{}{}:
		acquired = true
		return func() { <-h.inflightCh; <-h.queueCh }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer2.C:
		return nil, tooBusyError{}
	}
}
