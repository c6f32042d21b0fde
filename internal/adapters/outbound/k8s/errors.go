package k8s

// RejectedError marks a manifest the platform refused. Recoverable: the run
// logs it and continues with the next service.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return "rejected by platform: " + e.Reason
}

func (e *RejectedError) IsRejected() {}
