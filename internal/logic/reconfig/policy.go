package reconfig

// Resolve maps an operating mode to the field groups a run may mutate.
//
// The mapping is deliberately asymmetric: replicas are only touched for
// normal/unrecognized modes, while warning and unhealthy touch resources and
// leave replicas alone. This mirrors the behavior of the shell actuator this
// engine replaces.
// TODO: confirm with the platform team whether warning/unhealthy should also
// scale replicas, then fold the answer back into this table.
func Resolve(mode Mode) []FieldGroup {
	switch mode {
	case ModeWarning:
		return []FieldGroup{FieldGroupLimits}
	case ModeUnhealthy:
		return []FieldGroup{FieldGroupRequests, FieldGroupLimits}
	default:
		return []FieldGroup{FieldGroupReplicas}
	}
}
