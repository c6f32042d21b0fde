package shutdown_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skillcoder/reconfigurer/internal/infra/shutdown"
)

type recordingShutdowner struct {
	name string
	log  *[]string
	err  error
}

func (r *recordingShutdowner) Name() string { return r.name }

func (r *recordingShutdowner) Shutdown(context.Context) error {
	*r.log = append(*r.log, r.name)

	return r.err
}

func TestHandler_HandleSignals(t *testing.T) {
	t.Parallel()

	t.Run("signal cancels", func(t *testing.T) {
		t.Parallel()

		signals := make(chan os.Signal, 1)
		handler := shutdown.New(slog.Default(), signals)

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		done := make(chan struct{})

		go func() {
			handler.HandleSignals(ctx, cancel)
			close(done)
		}()

		signals <- syscall.SIGTERM

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("signal handler did not return")
		}

		require.Error(t, ctx.Err())
	})

	t.Run("context done exits without cancel", func(t *testing.T) {
		t.Parallel()

		signals := make(chan os.Signal, 1)
		handler := shutdown.New(slog.Default(), signals)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		done := make(chan struct{})

		go func() {
			handler.HandleSignals(ctx, func() {})
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("signal handler did not return")
		}
	})
}

func TestGracefulShutdown(t *testing.T) {
	t.Parallel()

	t.Run("reverse order", func(t *testing.T) {
		t.Parallel()

		var log []string

		err := shutdown.GracefulShutdown(t.Context(), slog.Default(), []shutdown.Shutdowner{
			&recordingShutdowner{name: "first", log: &log},
			&recordingShutdowner{name: "second", log: &log},
		})
		require.NoError(t, err)
		require.Equal(t, []string{"second", "first"}, log)
	})

	t.Run("collects component errors", func(t *testing.T) {
		t.Parallel()

		var log []string

		err := shutdown.GracefulShutdown(t.Context(), slog.Default(), []shutdown.Shutdowner{
			&recordingShutdowner{name: "ok", log: &log},
			&recordingShutdowner{name: "broken", log: &log, err: fmt.Errorf("stuck")},
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), "broken")
		// the failing component does not prevent the next one from shutting down
		require.Equal(t, []string{"broken", "ok"}, log)
	})
}
