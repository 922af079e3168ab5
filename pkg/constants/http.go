// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Constants for the HTTP request headers
const (
	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"

	// OrgIDHeader is the header name for the organization identity sent to
	// the transcript intake service
	OrgIDHeader string = "x-org-id"

	// IdempotencyKeyHeader is the header name for the intake idempotency key
	IdempotencyKeyHeader string = "x-idempotency-key"
)

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"
