// Package errors provides the classified error type used across assetrev.
//
// Errors carry a category (config, validation, filesystem, revision, ...), a severity and a
// retry strategy. The fluent builder keeps construction uniform, and the CLI adapter maps
// categories to process exit codes.
//
// Example usage:
//
//	err := errors.WrapError(readErr, errors.CategoryFileSystem, "failed to read asset").
//		Fatal().
//		WithContext("path", path).
//		Build()
package errors
