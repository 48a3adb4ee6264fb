// Package core provides the taxonomy service shared by the HTTP server and
// the command line tool.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Taxonomy Errors (TAX001-TAX099)
//
//	TAX001 - Unknown taxonomy: No taxonomy is loaded for this entry point
//	         Action: List the loaded taxonomies and check the entry point
//	         Matches: taxonomy.ErrUnknownTaxonomy
//
//	TAX002 - Ambiguous lookup: More than one concept matches
//	         Action: Use a prefixed QName to pick one of the candidates
//	         Matches: taxonomy.ErrAmbiguous
//
//	TAX003 - Concept not found: No concept matches
//	         Action: Check the spelling or look the concept up by label
//	         Matches: taxonomy.ErrConceptNotFound
//
//	TAX004 - Already loaded: The taxonomy is already loaded
//	         Action: Restart the service to replace a loaded taxonomy
//	         Matches: taxonomy.ErrAlreadyLoaded
//
//	TAX005 - Malformed taxonomy: The taxonomy document is invalid
//	         Action: Check the server logs for the validation failure
//	         Matches: taxonomy.ErrTaxonomy
//
//	TAX006 - No dimension: No explicit dimension allows the member
//	         Action: Check that the member belongs to a domain of the item
//	         Matches: ErrNoDimension
//
// # Document Errors (SRC001-SRC099)
//
//	SRC001 - Document not found: The taxonomy document does not exist
//	         Action: Check the document name and the configured source
//	         Matches: source.ErrNotFound
//
// # Name Errors (QN001-QN099)
//
//	QN001 - Invalid QName: The name is malformed or uses an unknown prefix
//	        Action: Use prefix:localName with a prefix bound by the taxonomy
//	        Matches: qname.ErrBrokenQName
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled: Request was cancelled
//	         Matches: context.Canceled, "context canceled"
//
//	REQ002 - Request timeout: Request timed out
//	         Matches: context.DeadlineExceeded, "context deadline exceeded"
//
//	REQ003 - Invalid request: A required parameter is missing or invalid
//	         Matches: ErrInvalidRequest
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Matches: "rate limit"
//
// # Access Errors (AUTH001-AUTH099)
//
//	AUTH001 - Missing API key: The request carries no X-API-Key header
//	          Matches: ErrUnauthorized
//
//	AUTH002 - Invalid API key: The key is not configured
//	          Matches: ErrForbidden
//
// # Default Error (ERR000)
//
// Fallback when nothing matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Matching
//
// Entries with a target error are matched with errors.Is; the others by
// case-insensitive substring of the error text. The first match wins, so
// more specific entries come first (ErrUnknownTaxonomy before ErrTaxonomy).
package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/xbrlmap/internal/qname"
	"github.com/JonMunkholm/xbrlmap/internal/source"
	"github.com/JonMunkholm/xbrlmap/internal/taxonomy"
)

var (
	// ErrNoDimension is returned when no explicit dimension of a primary
	// item allows a domain member.
	ErrNoDimension = errors.New("no explicit dimension allows member")

	// ErrInvalidRequest is returned for missing or malformed parameters.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnauthorized and ErrForbidden are reported by API key checks.
	ErrUnauthorized = errors.New("missing API key")
	ErrForbidden    = errors.New("invalid API key")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern maps a technical error to a user message and HTTP status.
type errorPattern struct {
	target  error  // matched with errors.Is when set
	pattern string // otherwise matched against the lowercased error text
	status  int
	msg     UserMessage
}

func (ep errorPattern) matches(err error, lower string) bool {
	if ep.target != nil {
		return errors.Is(err, ep.target)
	}
	return strings.Contains(lower, ep.pattern)
}

// errorPatterns is checked in order. Keep specific entries above general
// ones and update the package documentation when adding codes.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Taxonomy Errors (TAX001-TAX006)
	// =========================================================================
	{
		target: taxonomy.ErrUnknownTaxonomy,
		status: http.StatusNotFound,
		msg: UserMessage{
			Message: "No taxonomy is loaded for this entry point",
			Action:  "List the loaded taxonomies and check the entry point",
			Code:    "TAX001",
		},
	},
	{
		target: taxonomy.ErrAmbiguous,
		status: http.StatusConflict,
		msg: UserMessage{
			Message: "More than one concept matches",
			Action:  "Use a prefixed QName to pick one of the candidates",
			Code:    "TAX002",
		},
	},
	{
		target: taxonomy.ErrConceptNotFound,
		status: http.StatusNotFound,
		msg: UserMessage{
			Message: "No concept matches",
			Action:  "Check the spelling or look the concept up by label",
			Code:    "TAX003",
		},
	},
	{
		target: taxonomy.ErrAlreadyLoaded,
		status: http.StatusConflict,
		msg: UserMessage{
			Message: "The taxonomy is already loaded",
			Action:  "Restart the service to replace a loaded taxonomy",
			Code:    "TAX004",
		},
	},
	{
		target: taxonomy.ErrTaxonomy,
		status: http.StatusUnprocessableEntity,
		msg: UserMessage{
			Message: "The taxonomy document is invalid",
			Action:  "Check the server logs for the validation failure",
			Code:    "TAX005",
		},
	},
	{
		target: ErrNoDimension,
		status: http.StatusNotFound,
		msg: UserMessage{
			Message: "No explicit dimension allows this member",
			Action:  "Check that the member belongs to a domain of the item",
			Code:    "TAX006",
		},
	},

	// =========================================================================
	// Document and Name Errors (SRC001, QN001)
	// =========================================================================
	{
		target: source.ErrNotFound,
		status: http.StatusNotFound,
		msg: UserMessage{
			Message: "The taxonomy document does not exist",
			Action:  "Check the document name and the configured source",
			Code:    "SRC001",
		},
	},
	{
		target: qname.ErrBrokenQName,
		status: http.StatusBadRequest,
		msg: UserMessage{
			Message: "The name is not a valid QName",
			Action:  "Use prefix:localName with a prefix bound by the taxonomy",
			Code:    "QN001",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ003)
	// =========================================================================
	{
		target: context.Canceled,
		status: http.StatusServiceUnavailable,
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context canceled",
		status:  http.StatusServiceUnavailable,
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		target: context.DeadlineExceeded,
		status: http.StatusGatewayTimeout,
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try again later",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context deadline exceeded",
		status:  http.StatusGatewayTimeout,
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try again later",
			Code:    "REQ002",
		},
	},
	{
		target: ErrInvalidRequest,
		status: http.StatusBadRequest,
		msg: UserMessage{
			Message: "A required parameter is missing or invalid",
			Action:  "Check the request parameters",
			Code:    "REQ003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		status:  http.StatusTooManyRequests,
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},

	// =========================================================================
	// Access Errors (AUTH001-AUTH002)
	// =========================================================================
	{
		target: ErrUnauthorized,
		status: http.StatusUnauthorized,
		msg: UserMessage{
			Message: "An API key is required",
			Action:  "Send a configured key in the X-API-Key header",
			Code:    "AUTH001",
		},
	},
	{
		target: ErrForbidden,
		status: http.StatusForbidden,
		msg: UserMessage{
			Message: "The API key is not valid",
			Action:  "Check the key with the service operator",
			Code:    "AUTH002",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

func lookupPattern(err error) (errorPattern, bool) {
	lower := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if ep.matches(err, lower) {
			return ep, true
		}
	}
	return errorPattern{}, false
}

// MapError converts a technical error to a user-friendly message.
// If nothing matches, a generic fallback message with code ERR000 is
// returned.
//
// Example:
//
//	_, err := svc.LookupConcept(ep, core.LookupLabel, "Revenue")
//	msg := core.MapError(err)
//	// msg.Code == "TAX002" when several concepts carry the label
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	if ep, ok := lookupPattern(err); ok {
		return ep.msg
	}
	return defaultMessage
}

// HTTPStatus returns the response status for err: 200 for nil, 500 when
// nothing matches.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if ep, ok := lookupPattern(err); ok {
		return ep.status
	}
	return http.StatusInternalServerError
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
