package reconfig

import "errors"

var (
	ErrPrecondition   = errors.New("upstream context check failed")
	ErrBackupNotFound = errors.New("backup not found")
	ErrRestoreBackup  = errors.New("restore backup")
	ErrApply          = errors.New("apply manifest")
)
