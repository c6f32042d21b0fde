package httpserver

import (
	"context"

	"github.com/skillcoder/reconfigurer/internal/logic/reconfig"
)

// engine is the inbound port into the reconfiguration driver.
type engine interface {
	Run(ctx context.Context, req reconfig.PatchRequest) (*reconfig.RunReport, error)
	Rollback(ctx context.Context, backupID string) error
}

// contextChecker re-evaluates the upstream context check for readiness probes.
type contextChecker interface {
	CheckContext(ctx context.Context) error
}
