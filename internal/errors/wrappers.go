package errors

import "fmt"

// WrapParseError wraps a failure to load a package's sources
func WrapParseError(dir string, cause error) *BaseError {
	return Wrap(SyntaxErrorCode, fmt.Sprintf("failed to parse package in %s", dir), cause).
		WithContext("dir", dir).
		WithSuggestions("Run 'go vet' on the package to locate the syntax error")
}

// WrapGenerateError wraps a failure to render a package's registration file
func WrapGenerateError(pkg string, cause error) *BaseError {
	return Wrap(GenerationErrorCode, fmt.Sprintf("failed to generate handlers for package %s", pkg), cause).
		WithContext("package", pkg)
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapModuleError wraps failures reading or validating go.mod
func WrapModuleError(path string, cause error) *BaseError {
	return Wrap(ModuleErrorCode, fmt.Sprintf("failed to resolve module from %s", path), cause).
		WithContext("path", path).
		WithSuggestions(
			"Run mediatorgen inside a Go module",
			"Pass the module path explicitly with --module",
		)
}

// ConfigurationError creates a configuration error
func ConfigurationError(key, message string) *BaseError {
	fullMessage := fmt.Sprintf("configuration error in '%s': %s", key, message)
	return New(ConfigurationErrorCode, fullMessage).
		WithContext("key", key)
}

// StaleOutputError reports a generated file that does not match its sources
func StaleOutputError(path string) *BaseError {
	return New(StaleOutputErrorCode, fmt.Sprintf("%s is out of date", path)).
		WithLocation(SourceLocation{File: path}).
		WithSuggestions("Run mediatorgen to regenerate the file")
}
