package clierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCodeOf(t *testing.T) {
	assert.Equal(t, 0, ExitCodeOf(nil))
	assert.Equal(t, CodeInternal, ExitCodeOf(errors.New("plain")))
	assert.Equal(t, CodeConfig, ExitCodeOf(New(CodeConfig, "bad board")))
}

func TestExitCodeSurvivesWrapping(t *testing.T) {
	err := Wrap(CodeStage, "stage build", errors.New("exit 2"))
	wrapped := fmt.Errorf("pipeline: %w", err)

	assert.Equal(t, CodeStage, ExitCodeOf(wrapped))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(CodeSpawn, "spawn", cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "spawn")
	assert.Contains(t, err.Error(), "underlying")
}

func TestNormalizeRejectsZero(t *testing.T) {
	assert.Equal(t, CodeInternal, ExitCodeOf(New(0, "zero is success")))
}
