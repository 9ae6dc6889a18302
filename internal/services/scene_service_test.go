// internal/services/scene_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/simforge/studio3d/internal/errors"
	"github.com/simforge/studio3d/internal/models"
	"github.com/simforge/studio3d/internal/storage"
)

func newTestSceneService(t *testing.T) *SceneService {
	t.Helper()
	fs, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return NewSceneService(fs, time.Second)
}

func TestApplyActionsMutatesState(t *testing.T) {
	svc := newTestSceneService(t)

	state, result := svc.ApplyActions([]models.Action{
		{
			Kind:   models.ActionAddObject,
			Target: "box_1",
			Params: models.AddObjectParams{Type: models.ObjectBox, Name: "Box"},
		},
		{
			Kind:   models.ActionMoveObject,
			Target: "box_1",
			Params: models.MoveObjectParams{Delta: models.Vector3{X: 2}},
		},
	})

	assert.Equal(t, 2, result.Applied)
	assert.Empty(t, result.Skipped)
	require.True(t, state.HasObject("box_1"))
	assert.Equal(t, models.Vector3{X: 2}, state.FindObject("box_1").Position)
}

func TestApplyActionsReportsSkipped(t *testing.T) {
	svc := newTestSceneService(t)

	_, result := svc.ApplyActions([]models.Action{
		{
			Kind:   models.ActionScaleObject,
			Target: "ghost_1",
			Params: models.ScaleObjectParams{Factor: 2},
		},
	})

	assert.Zero(t, result.Applied)
	require.Len(t, result.Skipped, 1)
	assert.Contains(t, result.Skipped[0], "ghost_1")
}

func TestHighlightRevertsAfterDuration(t *testing.T) {
	svc := newTestSceneService(t)

	state, _ := svc.ApplyActions([]models.Action{{
		Kind:   models.ActionHighlightObject,
		Target: "conveyor_1",
		Params: models.HighlightObjectParams{Duration: 1000},
	}})
	assert.True(t, state.FindObject("conveyor_1").Highlighted)

	// Before the deadline nothing changes.
	svc.Tick(time.Now().Add(500 * time.Millisecond))
	snap := svc.Snapshot()
	assert.True(t, snap.FindObject("conveyor_1").Highlighted)

	changed := svc.Tick(time.Now().Add(2 * time.Second))
	assert.True(t, changed)
	snap = svc.Snapshot()
	assert.False(t, snap.FindObject("conveyor_1").Highlighted)
}

func TestRemoveCancelsPendingRevert(t *testing.T) {
	svc := newTestSceneService(t)

	svc.ApplyActions([]models.Action{
		{
			Kind:   models.ActionHighlightObject,
			Target: "conveyor_1",
			Params: models.HighlightObjectParams{Duration: 1000},
		},
		{
			Kind:   models.ActionRemoveObject,
			Target: "conveyor_1",
			Params: models.RemoveObjectParams{},
		},
	})

	// The expired revert has nothing left to do.
	changed := svc.Tick(time.Now().Add(2 * time.Second))
	assert.False(t, changed)
	snap := svc.Snapshot()
	assert.False(t, snap.HasObject("conveyor_1"))
}

func TestCameraTransitionCompletesOnTick(t *testing.T) {
	svc := newTestSceneService(t)
	pose := models.CameraPoseParams{
		Position: models.Vector3{X: 5, Y: 5, Z: 5},
		Target:   models.Vector3{Y: 1},
	}

	state, result := svc.ApplyActions([]models.Action{{
		Kind:   models.ActionCameraFocus,
		Params: pose,
	}})
	assert.Equal(t, 1, result.Applied)
	// The action itself only retargets; position moves on ticks.
	assert.Equal(t, models.DefaultCamera().Position, state.Camera.Position)
	assert.Equal(t, pose.Target, state.Camera.Target)

	svc.Tick(time.Now().Add(2 * time.Second))
	assert.Equal(t, pose.Position, svc.Snapshot().Camera.Position)
}

func TestResetCancelsEngines(t *testing.T) {
	svc := newTestSceneService(t)

	svc.ApplyActions([]models.Action{
		{
			Kind:   models.ActionHighlightObject,
			Target: "conveyor_1",
			Params: models.HighlightObjectParams{Duration: 1000},
		},
	})

	state := svc.Reset(true)
	assert.Equal(t, models.DefaultScene(), state)

	// No stale revert fires against the fresh scene.
	changed := svc.Tick(time.Now().Add(2 * time.Second))
	assert.False(t, changed)
}

func TestOnChangeReceivesSnapshots(t *testing.T) {
	svc := newTestSceneService(t)

	var got []models.SceneState
	svc.SetOnChange(func(s models.SceneState) { got = append(got, s) })

	svc.ApplyActions([]models.Action{{
		Kind:   models.ActionAddObject,
		Target: "box_1",
		Params: models.AddObjectParams{Type: models.ObjectBox},
	}})

	require.Len(t, got, 1)
	assert.True(t, got[0].HasObject("box_1"))
}

func TestSaveLoadListDeleteScenes(t *testing.T) {
	svc := newTestSceneService(t)

	svc.ApplyActions([]models.Action{{
		Kind:   models.ActionAddObject,
		Target: "box_1",
		Params: models.AddObjectParams{Type: models.ObjectBox, Color: "#4444ff"},
	}})
	require.NoError(t, svc.SaveScene("line-a"))

	names, err := svc.ListScenes()
	require.NoError(t, err)
	assert.Equal(t, []string{"line-a"}, names)

	// Mutate, then load the snapshot back.
	svc.Reset(false)
	snap := svc.Snapshot()
	assert.False(t, snap.HasObject("box_1"))

	state, err := svc.LoadScene("line-a")
	require.NoError(t, err)
	assert.True(t, state.HasObject("box_1"))
	snap = svc.Snapshot()
	assert.True(t, snap.HasObject("box_1"))

	require.NoError(t, svc.DeleteScene("line-a"))
	names, err = svc.ListScenes()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSceneNameValidation(t *testing.T) {
	svc := newTestSceneService(t)

	err := svc.SaveScene("../escape")
	assert.True(t, apperrors.IsValidationError(err))

	err = svc.SaveScene("")
	assert.True(t, apperrors.IsValidationError(err))
}

func TestLoadMissingSceneIsNotFound(t *testing.T) {
	svc := newTestSceneService(t)

	_, err := svc.LoadScene("nope")
	assert.True(t, apperrors.IsNotFoundError(err))

	err = svc.DeleteScene("nope")
	assert.True(t, apperrors.IsNotFoundError(err))
}
