package runner

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Handoff runs cmd in the foreground and returns its exit code. While the
// child runs, SIGINT and SIGTERM are caught and ignored by this process: the
// terminal delivers them to the child too, and the child decides the outcome.
func Handoff(ctx context.Context, r Runner, cmd Command) (int, error) {
	return handoff(ctx, r, cmd, nil)
}

func handoff(ctx context.Context, r Runner, cmd Command, onSignal func(os.Signal)) (int, error) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case s := <-sigs:
				if onSignal != nil {
					onSignal(s)
				}
			case <-done:
				return
			}
		}
	}()

	return r.Run(ctx, cmd)
}
