package cli

import (
	"errors"

	"github.com/fieldshift/fieldshift/internal/fields"
	"github.com/fieldshift/fieldshift/internal/mapping"
	"github.com/fieldshift/fieldshift/internal/notice"
	"github.com/fieldshift/fieldshift/internal/store"
	"github.com/fieldshift/fieldshift/internal/terms"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Site errors
	ErrSiteNotFound     = "SITE_NOT_FOUND"
	ErrSiteNotSpecified = "SITE_NOT_SPECIFIED"
	ErrConfigInvalid    = "CONFIG_INVALID"
	ErrSiteInvalid      = "SITE_INVALID"

	// Entity and field errors
	ErrEntityNotFound   = "ENTITY_NOT_FOUND"
	ErrFieldNotFound    = "FIELD_NOT_FOUND"
	ErrUnsupportedKey   = "UNSUPPORTED_KEY"
	ErrTypeNotFound     = "TYPE_NOT_FOUND"
	ErrTaxonomyNotFound = "TAXONOMY_NOT_FOUND"
	ErrTermExists       = "TERM_EXISTS"

	// Mapping errors
	ErrMappingInvalid = "MAPPING_INVALID"

	// File errors
	ErrFileReadError = "FILE_READ_ERROR"

	// Database errors
	ErrDatabaseError = "DATABASE_ERROR"

	// Input errors
	ErrInvalidInput    = "INVALID_INPUT"
	ErrMissingArgument = "MISSING_ARGUMENT"

	ErrConfirmationRequired = "CONFIRMATION_REQUIRED"
	ErrInternal             = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnRuleSkipped = notice.CodeRuleSkipped
	WarnMergeKept   = notice.CodeMergeKept
	WarnRowFailed   = "ROW_FAILED"
	WarnNotice      = "WARNING"
	WarnFailed      = "FAILED"
)

// errorCode picks the stable code for an error returned by the core packages.
func errorCode(err error, fallback string) string {
	switch {
	case errors.Is(err, store.ErrEntityNotFound):
		return ErrEntityNotFound
	case errors.Is(err, store.ErrTermExists):
		return ErrTermExists
	case errors.Is(err, fields.ErrUnsupportedKey), errors.Is(err, fields.ErrInvalidKey):
		return ErrUnsupportedKey
	case errors.Is(err, fields.ErrNotFound):
		return ErrFieldNotFound
	case errors.Is(err, terms.ErrPrecondition):
		return ErrTaxonomyNotFound
	case errors.Is(err, mapping.ErrInvalidArgument):
		return ErrInvalidInput
	}
	return fallback
}
