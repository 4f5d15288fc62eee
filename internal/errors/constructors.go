package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *CatalogError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *CatalogError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *CatalogError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Link grammar errors

func LinkParseError(input string, cause error) *CatalogError {
	return Wrap(cause, CategoryLink, SeverityWarning, "entity link parse failed").
		WithContext("input", input)
}

// Storage errors

func StorageError(operation string, cause error) *CatalogError {
	return Wrap(cause, CategoryStorage, SeverityError, "storage operation failed").
		WithContext("operation", operation)
}

// Event publishing errors

func EventPublishError(subject string, cause error) *CatalogError {
	return WrapRetryable(cause, CategoryEvents, SeverityWarning, "event publish failed").
		WithContext("subject", subject)
}
