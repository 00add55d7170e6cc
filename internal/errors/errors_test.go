package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseError_Error(t *testing.T) {
	err := New(GenerationErrorCode, "boom")
	assert.Equal(t, "boom", err.Error())

	err.WithLocation(SourceLocation{File: "handlers.go", Line: 12})
	assert.Equal(t, "handlers.go:12: boom", err.Error())

	err.WithCause(stderrors.New("disk full"))
	assert.Equal(t, "handlers.go:12: boom: disk full", err.Error())
}

func TestSourceLocation_String(t *testing.T) {
	assert.Equal(t, "unknown location", SourceLocation{}.String())
	assert.Equal(t, "a.go", SourceLocation{File: "a.go"}.String())
	assert.Equal(t, "a.go:3", SourceLocation{File: "a.go", Line: 3}.String())
	assert.Equal(t, "a.go:3:7", SourceLocation{File: "a.go", Line: 3, Column: 7}.String())
}

func TestWrappers(t *testing.T) {
	cause := stderrors.New("permission denied")

	fsErr := WrapFileSystemError("write", "/tmp/autogen_handlers.go", cause)
	assert.Equal(t, FileSystemErrorCode, fsErr.ErrorCode())
	assert.Equal(t, "write", fsErr.Context()["operation"])
	assert.ErrorIs(t, fsErr, cause)

	modErr := WrapModuleError("go.mod", cause)
	assert.Equal(t, ModuleErrorCode, modErr.ErrorCode())
	assert.NotEmpty(t, modErr.Suggestions())

	stale := StaleOutputError("pkg/autogen_handlers.go")
	assert.Equal(t, "pkg/autogen_handlers.go: pkg/autogen_handlers.go is out of date", stale.Error())
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("run failed: %w", ConfigurationError("output", "must not be empty"))

	assert.Equal(t, ConfigurationErrorCode, CodeOf(wrapped))
	assert.Equal(t, UnknownErrorCode, CodeOf(stderrors.New("plain")))
	assert.Equal(t, "ConfigurationError", CodeOf(wrapped).String())

	assert.Nil(t, SuggestionsOf(stderrors.New("plain")))
	assert.Equal(t, []string{"Run mediatorgen to regenerate the file"}, SuggestionsOf(StaleOutputError("x.go")))
}
