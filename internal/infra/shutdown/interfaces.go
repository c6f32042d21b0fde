package shutdown

import "context"

// Shutdowner is implemented by components that need graceful teardown.
type Shutdowner interface {
	Name() string
	Shutdown(ctx context.Context) error
}
