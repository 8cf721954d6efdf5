// error_messages.go maps technical errors to user-facing messages with a
// support code. Codes are grouped by prefix:
//
//	EXP  export            VAL  validation
//	TBL  table             CFG  configuration
//	ROW  rows              DEL  delete confirmation
//	ACT  actions           SRC  data sources
//	DB   database          REQ  request and session
//	RATE rate limiting     ERR000 anything else
//
// Errors from this module are matched by identity, so wrapping keeps the
// code. Errors from drivers and other layers only carry text and fall back
// to case-insensitive substring patterns.
package core

import (
	"context"
	"errors"
	"strings"

	"github.com/JonMunkholm/datagrid/internal/export"
	"github.com/JonMunkholm/datagrid/internal/form"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

// messageRule pairs a matcher with the message it produces.
type messageRule struct {
	match func(error) bool
	msg   UserMessage
}

func is(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

func as[E error]() func(error) bool {
	return func(err error) bool {
		var e E
		return errors.As(err, &e)
	}
}

func mentions(text string) func(error) bool {
	return func(err error) bool {
		return strings.Contains(strings.ToLower(err.Error()), text)
	}
}

func msg(code, message, action string) UserMessage {
	return UserMessage{Message: message, Action: action, Code: code}
}

// messageRules are tried in order; the first match wins. Export failures
// come first since they wrap lower level causes, and driver text comes
// before the generic load failure it is wrapped in.
var messageRules = []messageRule{
	{is(ErrTooManyExports), msg("EXP001", "System is busy generating other exports", "Please wait a moment and try again")},
	{is(ErrNothingToExport), msg("EXP002", "There are no rows to export", "Select rows or clear filters before exporting")},
	{as[*export.Error](), msg("EXP003", "The export file could not be written", "Try again or choose a different format")},

	{as[form.FieldErrors](), msg("VAL001", "Some fields are invalid", "Fix the highlighted fields and submit again")},
	{is(form.ErrValidation), msg("VAL001", "Some fields are invalid", "Fix the highlighted fields and submit again")},
	{is(ErrInvalidFilter), msg("VAL002", "The filter value could not be read", "Use numbers for ranges and YYYY-MM-DD for dates")},
	{is(export.ErrUnknownFormat), msg("VAL003", "This export format is not supported", "Choose xlsx, csv, json or yaml")},

	{is(ErrTableNotFound), msg("TBL001", "Table not found", "Verify the table name is correct")},
	{is(ErrUnknownColumn), msg("TBL002", "That column is not part of this table", "Reload the page to get the current columns")},
	{is(ErrMissingTableID), msg("TBL003", "This table is misconfigured", "Give the table a unique id")},
	{is(ErrNotAllowed), msg("TBL004", "This column does not support that action", "Choose a different column")},
	{is(ErrDuplicateColumn), msg("CFG001", "Two columns share the same id", "Give every column a unique id")},

	{is(ErrUnknownRow), msg("ROW001", "That row no longer exists", "Reload the table and try again")},
	{is(ErrNothingToDelete), msg("ROW002", "No rows are selected", "Select the rows to delete first")},
	{is(ErrConfirmationNotFound), msg("DEL001", "This delete request has expired", "Start the delete again")},
	{is(ErrNoHandler), msg("ACT001", "This action is not available", "Contact the table owner to enable it")},

	{mentions("connection refused"), msg("DB004", "Unable to connect to database", "Please try again in a few moments")},
	{mentions("connection reset"), msg("DB005", "Database connection was interrupted", "Please try again")},
	{is(context.Canceled), msg("REQ002", "Request was cancelled", "Please try again")},
	{is(context.DeadlineExceeded), msg("REQ003", "Request timed out", "Try a smaller page size or try again later")},
	{mentions("timeout"), msg("DB006", "Operation timed out", "Try a smaller page size or try again later")},
	{mentions("load page"), msg("SRC001", "Rows could not be loaded", "Please try again")},

	{mentions("session not found"), msg("REQ001", "Your table session has expired", "Reload the page to start a new session")},
	{mentions("rate limit"), msg("RATE001", "Too many requests", "Please wait a moment before trying again")},

	// Text forms of this module's errors, for messages that crossed a
	// boundary without their identity.
	{mentions("row not found"), msg("ROW001", "That row no longer exists", "Reload the table and try again")},
	{mentions("table not found"), msg("TBL001", "Table not found", "Verify the table name is correct")},
}

// defaultMessage is ERR000. Support checks the logs for the technical error.
var defaultMessage = msg("ERR000", "An unexpected error occurred", "Please try again or contact support")

// MapError converts err to the message of the first matching rule, or to
// the ERR000 fallback. A nil error maps to the zero message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	for _, r := range messageRules {
		if r.match(err) {
			return r.msg
		}
	}
	return defaultMessage
}

// IsKnownError reports whether err maps to a specific message rather than
// the fallback.
func IsKnownError(err error) bool {
	return err != nil && MapError(err).Code != defaultMessage.Code
}
