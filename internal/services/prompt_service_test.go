// internal/services/prompt_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/simforge/studio3d/internal/errors"
	"github.com/simforge/studio3d/internal/models"
	"github.com/simforge/studio3d/internal/parser"
	"github.com/simforge/studio3d/internal/scene"
	"github.com/simforge/studio3d/internal/storage"
)

func newTestPromptService(t *testing.T) (*PromptService, *SceneService) {
	t.Helper()
	fs, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)

	scenes := NewSceneService(fs, time.Second)
	prompts := NewPromptService(
		parser.NewParser(parser.NewResolver(), parser.StandardDefaults()),
		scenes,
		scene.NewHistoryLog(10),
	)
	return prompts, scenes
}

func TestExecuteAppliesParsedActions(t *testing.T) {
	prompts, scenes := newTestPromptService(t)

	resp, state, err := prompts.Execute("add a blue box")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.Len(t, resp.Actions, 1)

	target := resp.Actions[0].Target
	require.True(t, state.HasObject(target))
	assert.Equal(t, "#4444ff", state.FindObject(target).Color)
	snap := scenes.Snapshot()
	assert.True(t, snap.HasObject(target))
}

func TestExecuteCompoundPromptEndToEnd(t *testing.T) {
	prompts, _ := newTestPromptService(t)

	resp, state, err := prompts.Execute("Add a blue box, then scale it to 1.5")
	require.NoError(t, err)
	require.Len(t, resp.Actions, 2)

	obj := state.FindObject(resp.Actions[0].Target)
	require.NotNil(t, obj)
	assert.Equal(t, models.Vector3{X: 1.5, Y: 1.5, Z: 1.5}, obj.Scale)
}

func TestExecuteRecordsHistory(t *testing.T) {
	prompts, _ := newTestPromptService(t)

	prompts.Execute("add a box")
	prompts.Execute("gibberish that parses to nothing")

	entries := prompts.History()
	require.Len(t, entries, 2)
	// Failed prompts are recorded too, newest first.
	assert.False(t, entries[0].Response.Success)
	assert.True(t, entries[1].Response.Success)

	prompts.ClearHistory()
	assert.Empty(t, prompts.History())
}

func TestExecuteFailedPromptLeavesSceneUntouched(t *testing.T) {
	prompts, scenes := newTestPromptService(t)
	before := scenes.Snapshot()

	resp, state, err := prompts.Execute("completely unintelligible request")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, parser.FailureHint, resp.Message)
	assert.Equal(t, before, state)
}

func TestPreviewDoesNotApply(t *testing.T) {
	prompts, scenes := newTestPromptService(t)

	resp, err := prompts.Preview("add a box")
	require.NoError(t, err)
	assert.True(t, resp.Success)

	assert.Len(t, scenes.Snapshot().Objects, 2)
	assert.Empty(t, prompts.History())
}

func TestPromptValidation(t *testing.T) {
	prompts, _ := newTestPromptService(t)

	_, _, err := prompts.Execute("   ")
	assert.True(t, apperrors.IsValidationError(err))

	long := make([]byte, maxPromptLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = prompts.Preview(string(long))
	assert.True(t, apperrors.IsValidationError(err))
}
