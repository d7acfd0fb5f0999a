// Package errors provides the classified error primitives used across figicons.
//
// Every failure that crosses a package boundary is a ClassifiedError carrying a
// category, a severity, a retry strategy and structured context. Errors are built
// with a fluent builder:
//
//	err := errors.ServiceError("something went wrong, try again later").
//		WithContext("status", resp.StatusCode).
//		WithCause(originalErr).
//		Build()
//
// Sentinels (see sentinels.go) name the failure classes callers need to tell apart;
// match them with the standard errors.Is, which compares category and message.
package errors
