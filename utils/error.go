package utils

import "errors"

var (
	ErrorRecordNotFound    = errors.New("record not found")
	ErrorNoJobSelected     = errors.New("no job is selected")
	ErrorCacheEntryMissing = errors.New("job not present in any cached page")
)
