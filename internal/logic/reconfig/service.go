package reconfig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/skillcoder/reconfigurer/internal/infra/metrics"
	"github.com/skillcoder/reconfigurer/internal/manifest"
)

// Service is the control loop driver. It owns one PatchRequest per run and
// walks the registered services strictly sequentially: backup, patch, apply,
// next. Per-service failures are converted into outcomes; only the upstream
// context check can fail a whole run.
type Service struct {
	logger  *slog.Logger
	store   ManifestStore
	backups BackupStore
	applier Applier
}

// New creates a new reconfiguration service.
func New(
	logger *slog.Logger,
	store ManifestStore,
	backups BackupStore,
	applier Applier,
) *Service {
	return &Service{
		logger:  logger,
		store:   store,
		backups: backups,
		applier: applier,
	}
}

// Run executes one reconfiguration run and returns the per-service report.
// The returned error is non-nil only when the entry precondition fails.
func (s *Service) Run(ctx context.Context, req PatchRequest) (*RunReport, error) {
	logger := s.logger.With("engine", "run", "mode", req.Mode, "dryRun", req.DryRun)

	if err := s.applier.CheckContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrecondition, err)
	}

	report := &RunReport{Mode: req.Mode, DryRun: req.DryRun}
	groups := Resolve(req.Mode)

	targets, ok := s.selectServices(req.Service)
	if !ok {
		logger.WarnContext(ctx, "requested service is not registered, skipping", "service", req.Service)
		metrics.ServicesSkippedTotal.WithLabelValues(req.Service).Inc()

		report.Outcomes = append(report.Outcomes, ServiceOutcome{
			Service: req.Service,
			Status:  StatusSkipped,
			Reason:  "service not registered",
		})
		report.Skipped++

		return report, nil
	}

	for _, ref := range targets {
		outcome := s.processService(ctx, logger, req, groups, ref)
		report.Outcomes = append(report.Outcomes, outcome)

		switch outcome.Status {
		case StatusSkipped:
			report.Skipped++
			metrics.ServicesSkippedTotal.WithLabelValues(ref.Name).Inc()
		case StatusRejected:
			report.Rejected++
			metrics.ApplyRejectedTotal.WithLabelValues(ref.Name).Inc()
		default:
			report.Processed++
			metrics.ServicesProcessedTotal.WithLabelValues(ref.Name, string(req.Mode)).Inc()
		}
	}

	logger.InfoContext(ctx, "run complete",
		"processed", report.Processed,
		"skipped", report.Skipped,
		"rejected", report.Rejected,
	)

	return report, nil
}

// Rollback restores a snapshot and hands it to the platform directly. The
// field patcher is bypassed entirely.
func (s *Service) Rollback(ctx context.Context, backupID string) error {
	logger := s.logger.With("engine", "rollback", "backup", backupID)

	if err := s.applier.CheckContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrPrecondition, err)
	}

	data, err := s.backups.Restore(ctx, backupID)
	if err != nil {
		var target notFound
		if errors.As(err, &target) {
			return fmt.Errorf("%w: %s", ErrBackupNotFound, backupID)
		}

		return fmt.Errorf("%w: %w", ErrRestoreBackup, err)
	}

	if err := s.applier.Apply(ctx, data); err != nil {
		return fmt.Errorf("%w: %w", ErrApply, err)
	}

	metrics.RollbacksTotal.Inc()
	logger.InfoContext(ctx, "rollback applied")

	return nil
}

// selectServices returns the services targeted by the run in declaration
// order. The second result is false when a filter names an unknown service.
func (s *Service) selectServices(filter string) ([]ServiceRef, bool) {
	all := s.store.Services()

	if filter == "" {
		return all, true
	}

	for _, ref := range all {
		if ref.Name == filter {
			return []ServiceRef{ref}, true
		}
	}

	return nil, false
}

func (s *Service) processService(
	ctx context.Context,
	logger *slog.Logger,
	req PatchRequest,
	groups []FieldGroup,
	ref ServiceRef,
) ServiceOutcome {
	logger = logger.With("service", ref.Name)

	skip := func(reason string) ServiceOutcome {
		return ServiceOutcome{Service: ref.Name, Status: StatusSkipped, Reason: reason}
	}

	raw, err := s.store.Load(ctx, ref.Name)
	if err != nil {
		var target notFound
		if errors.As(err, &target) {
			logger.WarnContext(ctx, "manifest not found, skipping")

			return skip("manifest not found")
		}

		logger.ErrorContext(ctx, "load manifest failed, skipping", "reason", err)

		return skip(fmt.Sprintf("load manifest: %v", err))
	}

	doc, err := manifest.Parse(raw)
	if err != nil {
		logger.WarnContext(ctx, "malformed manifest, skipping", "reason", err)

		return skip(fmt.Sprintf("malformed manifest: %v", err))
	}

	outcome := ServiceOutcome{Service: ref.Name}

	// The snapshot goes in before any field write so the pre-mutation state
	// is always recoverable. Dry runs make no external change, so there is
	// nothing to roll back and no record is written.
	if !req.DryRun {
		backupID, err := s.backups.Snapshot(ctx, ref.Name, raw)
		if err != nil {
			logger.ErrorContext(ctx, "snapshot failed, not mutating service", "reason", err)

			return skip(fmt.Sprintf("snapshot: %v", err))
		}

		outcome.BackupID = backupID
		metrics.BackupsCreatedTotal.WithLabelValues(ref.Name).Inc()
		logger.InfoContext(ctx, "snapshot written", "backup", backupID)
	}

	changes, err := s.patch(doc, req, groups, ref.Container)
	if err != nil {
		if errors.Is(err, manifest.ErrContainerNotFound) {
			logger.WarnContext(ctx, "container not found, skipping", "container", ref.Container)

			return skip(fmt.Sprintf("container %q not found", ref.Container))
		}

		logger.WarnContext(ctx, "patch failed, skipping", "reason", err)

		return skip(fmt.Sprintf("patch: %v", err))
	}

	outcome.Changes = changes

	patched, err := doc.Encode()
	if err != nil {
		logger.ErrorContext(ctx, "encode failed, skipping", "reason", err)

		return skip(fmt.Sprintf("encode: %v", err))
	}

	if req.DryRun {
		logger.InfoContext(ctx, "dry run, manifest not applied", "changes", len(changes))
		outcome.Status = StatusPreviewed

		return outcome
	}

	if err := s.store.Save(ctx, ref.Name, patched); err != nil {
		logger.ErrorContext(ctx, "save manifest failed, skipping", "reason", err)

		return skip(fmt.Sprintf("save manifest: %v", err))
	}

	if err := s.applier.Apply(ctx, patched); err != nil {
		outcome.Status = StatusRejected
		outcome.Reason = err.Error()

		var rej rejected
		if !errors.As(err, &rej) {
			outcome.Reason = fmt.Sprintf("apply: %v", err)
		}

		logger.ErrorContext(ctx, "platform rejected manifest", "reason", err)

		return outcome
	}

	outcome.Status = StatusApplied
	logger.InfoContext(ctx, "manifest applied", "changes", len(changes))

	return outcome
}

// patch mutates the selected field groups in memory and records old -> new
// values for the report.
func (s *Service) patch(
	doc *manifest.Document,
	req PatchRequest,
	groups []FieldGroup,
	container string,
) ([]Change, error) {
	changes := make([]Change, 0, 5)

	for _, group := range groups {
		switch group {
		case FieldGroupReplicas:
			old, _ := doc.Replicas()

			if err := doc.SetReplicas(req.Replicas); err != nil {
				return nil, err
			}

			changes = append(changes, Change{
				Field: "replicas",
				Old:   strconv.FormatInt(old, 10),
				New:   strconv.FormatInt(int64(req.Replicas), 10),
			})
		case FieldGroupRequests:
			requestChanges, err := patchResources(
				doc, container, manifest.Requests,
				req.CPURequestsMilli, req.MemoryRequestsMi,
			)
			if err != nil {
				return nil, err
			}

			changes = append(changes, requestChanges...)
		case FieldGroupLimits:
			limitChanges, err := patchResources(
				doc, container, manifest.Limits,
				req.CPULimitsMilli, req.MemoryLimitsMi,
			)
			if err != nil {
				return nil, err
			}

			changes = append(changes, limitChanges...)
		}
	}

	return changes, nil
}

func patchResources(
	doc *manifest.Document,
	container string,
	group manifest.ResourceGroup,
	cpuMilli, memoryMi int64,
) ([]Change, error) {
	oldCPU, oldMemory, err := doc.Resources(container, group)
	if err != nil {
		return nil, err
	}

	cpu := manifest.CPUQuantity(cpuMilli)
	memory := manifest.MemoryQuantity(memoryMi)

	if err := doc.SetResources(container, group, cpu, memory); err != nil {
		return nil, err
	}

	return []Change{
		{Field: string(group) + ".cpu", Old: oldCPU, New: cpu},
		{Field: string(group) + ".memory", Old: oldMemory, New: memory},
	}, nil
}
