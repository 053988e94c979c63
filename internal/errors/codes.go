// Package errors provides structured error handling for credcascade.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Index backend errors
//   - 4XX: Entity and graph errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIndex indicates failures of the index backend.
	CategoryIndex Category = "INDEX"
	// CategoryEntity indicates malformed entities or object graphs.
	CategoryEntity Category = "ENTITY"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Index errors (200-299)
	ErrCodeIndexWrite   = "ERR_201_INDEX_WRITE_FAILED"
	ErrCodeIndexRemove  = "ERR_202_INDEX_REMOVE_FAILED"
	ErrCodeIndexLocked  = "ERR_203_INDEX_LOCKED"
	ErrCodeCorruptIndex = "ERR_204_CORRUPT_INDEX"

	// Entity errors (400-499)
	ErrCodeMalformedEntity = "ERR_401_MALFORMED_ENTITY"
	ErrCodeUnknownRelation = "ERR_402_UNKNOWN_RELATION"
	ErrCodeUnknownEntity   = "ERR_403_UNKNOWN_ENTITY"
	ErrCodeInvalidGraph    = "ERR_404_INVALID_GRAPH"

	// Internal errors (500-599)
	ErrCodeInternal      = "ERR_501_INTERNAL"
	ErrCodeDepthExceeded = "ERR_502_DEPTH_EXCEEDED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// "101" from "ERR_101_CONFIG_NOT_FOUND"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIndex
	case '4':
		return CategoryEntity
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeCorruptIndex:
		return SeverityFatal
	}

	if isRetryableCode(code) {
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
// A locked index usually means another writer holds it for a short while.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeIndexLocked:
		return true
	default:
		return false
	}
}
