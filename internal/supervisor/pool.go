package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Pool runs N copies of this executable in worker mode.
type Pool struct {
	count int
	log   zerolog.Logger

	// workerArgs builds the argv for one worker, given its id.
	workerArgs func(id string) []string
}

// New builds a pool of count workers. argsFor produces the child argv for a
// worker id; it normally re-uses the supervisor's own flags plus the internal
// worker switch.
func New(count int, argsFor func(id string) []string, log zerolog.Logger) *Pool {
	if count < 1 {
		count = 1
	}
	return &Pool{count: count, workerArgs: argsFor, log: log}
}

type workerExit struct {
	id  string
	err error
}

// Run spawns all workers and blocks until every one has exited. Signals are
// forwarded as SIGTERM via context cancelation. The first worker that exits
// with an error (a failed model load exits nonzero before binding) cancels
// the rest and is returned, so a broken deployment surfaces as a nonzero
// supervisor exit.
func (p *Pool) Run(ctx context.Context) error {
	bin, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	exits := make(chan workerExit, p.count)
	for i := 0; i < p.count; i++ {
		id := uuid.NewString()
		cmd := exec.CommandContext(ctx, bin, p.workerArgs(id)...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
		cmd.WaitDelay = 10 * time.Second
		if err := cmd.Start(); err != nil {
			cancel()
			// Drain the workers that did start.
			for j := 0; j < i; j++ {
				<-exits
			}
			return fmt.Errorf("start worker %s: %w", id, err)
		}
		p.log.Info().Str("worker_id", id).Int("pid", cmd.Process.Pid).Msg("worker started")
		go func(id string, cmd *exec.Cmd) {
			exits <- workerExit{id: id, err: cmd.Wait()}
		}(id, cmd)
	}

	var firstErr error
	for i := 0; i < p.count; i++ {
		we := <-exits
		if we.err != nil && ctx.Err() == nil {
			p.log.Error().Str("worker_id", we.id).Err(we.err).Msg("worker exited with failure")
			if firstErr == nil {
				firstErr = fmt.Errorf("worker %s: %w", we.id, we.err)
				cancel()
			}
			continue
		}
		p.log.Info().Str("worker_id", we.id).Msg("worker exited")
	}
	return firstErr
}
