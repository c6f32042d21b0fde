package backupdir

// BackupNotFoundError marks a restore request for a snapshot id that has no
// stored record.
type BackupNotFoundError struct {
	ID string
}

func (e *BackupNotFoundError) Error() string {
	return "backup not found: " + e.ID
}

func (e *BackupNotFoundError) IsNotFound() {}
