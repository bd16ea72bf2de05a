package cli

// Error codes for --json error responses. They are stable for scripts.
const (
	ErrConfigInvalid   = "CONFIG_INVALID"
	ErrConfigMissing   = "CONFIG_DIR_MISSING"
	ErrConfigExists    = "CONFIG_DIR_EXISTS"
	ErrFileNotFound    = "FILE_NOT_FOUND"
	ErrFileReadError   = "FILE_READ_ERROR"
	ErrFileWriteError  = "FILE_WRITE_ERROR"
	ErrAttributeError  = "ATTRIBUTE_IO_ERROR"
	ErrDatabaseError   = "DATABASE_ERROR"
	ErrInvalidInput    = "INVALID_INPUT"
	ErrMissingArgument = "MISSING_ARGUMENT"
	ErrInternal        = "INTERNAL_ERROR"
	ErrNotImplemented  = "NOT_IMPLEMENTED"
)

// Warning codes for non-fatal problems.
const (
	WarnPathNotFound      = "PATH_NOT_FOUND"
	WarnAttributeIO       = "ATTRIBUTE_IO_ERROR"
	WarnValueMissing      = "VALUE_MISSING"
	WarnKeyUnchanged      = "KEY_UNCHANGED"
	WarnEmptyKeyRemoved   = "EMPTY_KEY_REMOVED"
	WarnUnknownTags       = "UNKNOWN_TAGS"
	WarnKnownTagsMissing  = "KNOWN_TAGS_MISSING"
	WarnIndexUpdateFailed = "INDEX_UPDATE_FAILED"
	WarnReindexFailed     = "REINDEX_FAILED"
	WarnFieldsSkipped     = "FIELDS_NOT_REGENERATED"
	WarnGeneric           = "WARNING"
)
