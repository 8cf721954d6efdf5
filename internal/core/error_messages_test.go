package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/datagrid/internal/export"
	"github.com/JonMunkholm/datagrid/internal/form"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "unknown row maps correctly",
			err:         fmt.Errorf("%w: 42", ErrUnknownRow),
			wantCode:    "ROW001",
			wantMessage: "That row no longer exists",
		},
		{
			name:        "unknown column maps correctly",
			err:         fmt.Errorf("%w: nope", ErrUnknownColumn),
			wantCode:    "TBL002",
			wantMessage: "That column is not part of this table",
		},
		{
			name:        "missing table id maps correctly",
			err:         ErrMissingTableID,
			wantCode:    "TBL003",
			wantMessage: "This table is misconfigured",
		},
		{
			name:        "duplicate column maps correctly",
			err:         fmt.Errorf("%w: age", ErrDuplicateColumn),
			wantCode:    "CFG001",
			wantMessage: "Two columns share the same id",
		},
		{
			name:        "form validation maps correctly",
			err:         form.FieldErrors{"firstName": "First Name is required"},
			wantCode:    "VAL001",
			wantMessage: "Some fields are invalid",
		},
		{
			name:        "export failure wins over wrapped timeout",
			err:         &export.Error{Format: "xlsx", Filename: "people.xlsx", Err: context.DeadlineExceeded},
			wantCode:    "EXP003",
			wantMessage: "The export file could not be written",
		},
		{
			name:        "export limiter maps correctly",
			err:         ErrTooManyExports,
			wantCode:    "EXP001",
			wantMessage: "System is busy generating other exports",
		},
		{
			name:        "connection refused beats load page",
			err:         errors.New("load page 2 of table people: dial tcp: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "expired confirmation maps correctly",
			err:         ErrConfirmationNotFound,
			wantCode:    "DEL001",
			wantMessage: "This delete request has expired",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("ROW NOT FOUND"),
			wantCode:    "ROW001",
			wantMessage: "That row no longer exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapError_WrappingKeepsCode(t *testing.T) {
	err := fmt.Errorf("delete rows: %w", fmt.Errorf("confirm: %w", ErrConfirmationNotFound))
	if got := MapError(err).Code; got != "DEL001" {
		t.Errorf("MapError() code = %q, want DEL001", got)
	}

	// Identity, not wording, decides for module errors.
	if got := MapError(errors.New("no handler configured")).Code; got != "ERR000" {
		t.Errorf("MapError() code = %q, want ERR000 for a lookalike error", got)
	}
}

func TestMapError_ContextErrors(t *testing.T) {
	if got := MapError(fmt.Errorf("fetch: %w", context.Canceled)).Code; got != "REQ002" {
		t.Errorf("canceled code = %q, want REQ002", got)
	}
	if got := MapError(fmt.Errorf("fetch: %w", context.DeadlineExceeded)).Code; got != "REQ003" {
		t.Errorf("deadline code = %q, want REQ003", got)
	}
}

func TestIsKnownError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not known", err: nil, want: false},
		{name: "module error is known", err: ErrNothingToExport, want: true},
		{name: "foreign error is not known", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsKnownError(tt.err); got != tt.want {
				t.Errorf("IsKnownError() = %v, want %v", got, tt.want)
			}
		})
	}
}
