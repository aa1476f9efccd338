//go:build !windows

package runner

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandoff_SwallowsInterrupt(t *testing.T) {
	// keep the test binary alive should a signal land after the handoff ends
	guard := make(chan os.Signal, 1)
	signal.Notify(guard, syscall.SIGINT)
	defer signal.Stop(guard)

	seen := make(chan os.Signal, 1)
	r := funcRunner(func(context.Context, Command) (int, error) {
		if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
			return -1, err
		}
		select {
		case <-seen:
			return 130, nil
		case <-time.After(5 * time.Second):
			return 0, nil
		}
	})

	code, err := handoff(context.Background(), r, Command{Name: "npm"}, func(s os.Signal) {
		seen <- s
	})
	require.NoError(t, err)
	assert.Equal(t, 130, code)
}
