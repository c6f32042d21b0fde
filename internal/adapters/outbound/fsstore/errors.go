package fsstore

// ManifestNotFoundError marks a service whose manifest is not registered or
// whose backing file is absent. Recoverable: the run skips the service.
type ManifestNotFoundError struct {
	Service string
}

func (e *ManifestNotFoundError) Error() string {
	return "manifest not found: " + e.Service
}

func (e *ManifestNotFoundError) IsNotFound() {}
