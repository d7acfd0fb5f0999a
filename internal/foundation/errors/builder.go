package errors

import "maps"

// ErrorBuilder assembles a ClassifiedError.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts a builder with error severity and no retry.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
	}}
}

// From starts a builder with the classification of an existing sentinel, so the
// built error still matches the sentinel under errors.Is.
func From(sentinel *ClassifiedError) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: sentinel.category,
		severity: sentinel.severity,
		retry:    sentinel.retry,
		message:  sentinel.message,
	}}
}

func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.err.severity = severity
	return b
}

func (b *ErrorBuilder) WithRetry(strategy RetryStrategy) *ErrorBuilder {
	b.err.retry = strategy
	return b
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

// WithContext attaches a key/value pair that the CLI adapter logs as an attribute.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context = b.err.context.Set(key, value)
	return b
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder { return b.WithSeverity(SeverityFatal) }

// Warning marks a failure that drops one icon while the run continues.
func (b *ErrorBuilder) Warning() *ErrorBuilder { return b.WithSeverity(SeverityWarning) }

func (b *ErrorBuilder) Retryable() *ErrorBuilder { return b.WithRetry(RetryBackoff) }

func (b *ErrorBuilder) UserAction() *ErrorBuilder { return b.WithRetry(RetryUserAction) }

// Build returns a new error; the builder can keep being used.
func (b *ErrorBuilder) Build() *ClassifiedError {
	built := b.err
	built.context = maps.Clone(b.err.context)
	return &built
}

// ConfigError is a fatal problem with the configuration file, env or flags.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

// ValidationError is a fatal problem with the requested selection.
func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal()
}

// AuthError is a rejected token or an inaccessible document.
func AuthError(message string) *ErrorBuilder {
	return NewError(CategoryAuth, message).Fatal().UserAction()
}

// NotFoundError is a missing page or node the user named.
func NotFoundError(message string) *ErrorBuilder {
	return NewError(CategoryNotFound, message).Fatal().UserAction()
}

// NetworkError is a transport failure on a single asset.
func NetworkError(message string) *ErrorBuilder {
	return NewError(CategoryNetwork, message).Retryable()
}

// ServiceError is an unexpected response from the remote API.
func ServiceError(message string) *ErrorBuilder {
	return NewError(CategoryService, message).Fatal().Retryable()
}

func MarkupError(message string) *ErrorBuilder {
	return NewError(CategoryMarkup, message)
}

func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message).Fatal()
}

func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
