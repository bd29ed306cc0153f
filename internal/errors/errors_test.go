package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchError(t *testing.T) {
	underlying := fmt.Errorf("walk failed")
	err := NewSearchError("foo.*bar", underlying)

	assert.Equal(t, ErrorTypeSearch, err.Type)
	assert.Contains(t, err.Error(), "foo.*bar")
	assert.True(t, stderrors.Is(err, underlying))
	assert.False(t, err.Timestamp.IsZero())
}

func TestReplaceError(t *testing.T) {
	underlying := fmt.Errorf("disk full")
	err := NewReplaceError("src/main.go", underlying)

	assert.Equal(t, ErrorTypeReplace, err.Type)
	assert.Contains(t, err.Error(), "src/main.go")
	assert.True(t, stderrors.Is(err, underlying))
}

func TestFileErrorPermissionDetection(t *testing.T) {
	err := NewFileError("read", "/etc/shadow", fmt.Errorf("permission denied"))
	assert.Equal(t, ErrorTypePermission, err.Type)

	err = NewFileError("read", "gone.txt", fmt.Errorf("no such file"))
	assert.Equal(t, ErrorTypeFileNotFound, err.Type)
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("debounce_ms", "-1", fmt.Errorf("must be non-negative"))
	assert.Contains(t, err.Error(), "debounce_ms")
	assert.Contains(t, err.Error(), "-1")
}

func TestMultiError(t *testing.T) {
	e1 := fmt.Errorf("first")
	e2 := fmt.Errorf("second")

	multi := NewMultiError([]error{e1, nil, e2})
	require.Len(t, multi.Errors, 2)
	assert.Contains(t, multi.Error(), "2 errors")
	assert.True(t, stderrors.Is(multi, e1))
	assert.True(t, stderrors.Is(multi, e2))

	single := NewMultiError([]error{e1})
	assert.Equal(t, "first", single.Error())

	empty := NewMultiError(nil)
	assert.Equal(t, "no errors", empty.Error())
}
