package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Configuration errors
	BadProviderError
	AssaysConfigError

	// Local reference index errors
	LocalRefReadError
	LocalRefFormatError

	// Occurrence table errors
	OccurrenceReadError
	OccurrenceWriteError

	// Resolution errors
	EmptyLineageError
	MappingWriteError
)
