// Package errors provides the classified error type used across the site build.
//
// A ClassifiedError carries a category (config, content, render, filesystem, ...),
// a severity and free-form context. The CLI adapter maps categories to exit codes.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryContent, "failed to read post").
//		WithContext("file", path).
//		Build()
//
// Template filters never return errors; they degrade to a string fallback instead.
package errors
