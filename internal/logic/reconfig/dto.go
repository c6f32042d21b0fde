package reconfig

// Mode is the operating mode requested by the upstream planner. It selects
// which field groups of a service manifest a run is allowed to mutate.
type Mode string

const (
	ModeNormal    Mode = "normal"
	ModeWarning   Mode = "warning"
	ModeUnhealthy Mode = "unhealthy"
)

// FieldGroup is a named subset of a manifest's mutable fields.
type FieldGroup string

const (
	FieldGroupReplicas FieldGroup = "replicas"
	FieldGroupRequests FieldGroup = "requests"
	FieldGroupLimits   FieldGroup = "limits"
)

// ServiceRef identifies one registered service and the container inside its
// manifest that resource patches address.
type ServiceRef struct {
	Name      string
	Container string
}

// PatchRequest carries the parameters of one reconfiguration run.
// CPU magnitudes are milli-cpu, memory magnitudes are Mi; units are appended
// when the values are written into the manifest.
type PatchRequest struct {
	Service          string `json:"service,omitempty"` // empty means all registered services
	Mode             Mode   `json:"mode,omitempty"`
	Replicas         int32  `json:"replicas"`
	CPURequestsMilli int64  `json:"cpuRequests"`
	MemoryRequestsMi int64  `json:"memoryRequests"`
	CPULimitsMilli   int64  `json:"cpuLimits"`
	MemoryLimitsMi   int64  `json:"memoryLimits"`
	DryRun           bool   `json:"dryRun,omitempty"`
}

// OutcomeStatus classifies the result of processing one service.
type OutcomeStatus string

const (
	// StatusApplied means the patched manifest was pushed to the platform.
	StatusApplied OutcomeStatus = "applied"

	// StatusPreviewed means a dry run computed the patch without side effects.
	StatusPreviewed OutcomeStatus = "previewed"

	// StatusSkipped means the service was left untouched (missing or
	// malformed manifest, unknown service, unknown container).
	StatusSkipped OutcomeStatus = "skipped"

	// StatusRejected means the platform refused the patched manifest.
	StatusRejected OutcomeStatus = "rejected"
)

// Change records one field mutation for the end-of-run report.
type Change struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// ServiceOutcome is the per-service result of a run.
type ServiceOutcome struct {
	Service  string        `json:"service"`
	Status   OutcomeStatus `json:"status"`
	BackupID string        `json:"backupId,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Changes  []Change      `json:"changes,omitempty"`
}

// RunReport summarizes one reconfiguration run.
type RunReport struct {
	Mode      Mode             `json:"mode"`
	DryRun    bool             `json:"dryRun"`
	Outcomes  []ServiceOutcome `json:"outcomes"`
	Processed int              `json:"processed"`
	Skipped   int              `json:"skipped"`
	Rejected  int              `json:"rejected"`
}
