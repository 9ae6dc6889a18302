// internal/scene/reducer_test.go
package scene

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simforge/studio3d/internal/models"
)

func TestReduceAddObjectPreservesSiblings(t *testing.T) {
	state := models.DefaultScene()

	out := Reduce(state, models.Action{
		Kind:   models.ActionAddObject,
		Target: "box_1",
		Params: models.AddObjectParams{Type: models.ObjectBox, Name: "Box", Color: "#4444ff"},
	})

	assert.Empty(t, out.Skipped)
	require.Len(t, out.State.Objects, 3)
	assert.Equal(t, "conveyor_1", out.State.Objects[0].ID)
	assert.Equal(t, "robot_arm_1", out.State.Objects[1].ID)

	added := out.State.Objects[2]
	assert.Equal(t, "box_1", added.ID)
	assert.True(t, added.Visible)
	assert.Equal(t, models.Vector3{X: 1, Y: 1, Z: 1}, added.Scale)

	// The input state is untouched.
	assert.Len(t, state.Objects, 2)
}

func TestReduceAddDuplicateIDIsNoOp(t *testing.T) {
	state := models.DefaultScene()

	out := Reduce(state, models.Action{
		Kind:   models.ActionAddObject,
		Target: "conveyor_1",
		Params: models.AddObjectParams{Type: models.ObjectConveyor},
	})

	assert.NotEmpty(t, out.Skipped)
	assert.Len(t, out.State.Objects, 2)
}

func TestReduceMoveDeltaIsAdditive(t *testing.T) {
	state := models.DefaultScene()
	move := models.Action{
		Kind:   models.ActionMoveObject,
		Target: "conveyor_1",
		Params: models.MoveObjectParams{Delta: models.Vector3{X: 2}},
	}

	out := Reduce(state, move)
	out = Reduce(out.State, move)

	assert.Equal(t, models.Vector3{X: 4, Y: 0.5, Z: 0}, out.State.FindObject("conveyor_1").Position)
}

func TestReduceMoveAbsolute(t *testing.T) {
	state := models.DefaultScene()

	out := Reduce(state, models.Action{
		Kind:   models.ActionMoveObject,
		Target: "conveyor_1",
		Params: models.MoveObjectParams{Position: models.Vector3{X: 7, Y: 1, Z: -3}, Absolute: true},
	})

	assert.Equal(t, models.Vector3{X: 7, Y: 1, Z: -3}, out.State.FindObject("conveyor_1").Position)
}

func TestReduceRotateAccumulatesOnAxis(t *testing.T) {
	state := models.DefaultScene()
	rotate := models.Action{
		Kind:   models.ActionRotateObject,
		Target: "robot_arm_1",
		Params: models.RotateObjectParams{Axis: "y", Degrees: 45},
	}

	out := Reduce(state, rotate)
	out = Reduce(out.State, rotate)

	rotation := out.State.FindObject("robot_arm_1").Rotation
	assert.Equal(t, float64(90), rotation.Y)
	assert.Equal(t, float64(0), rotation.X)
	assert.Equal(t, float64(0), rotation.Z)
}

func TestReduceMissingTargetIsNoOp(t *testing.T) {
	state := models.DefaultScene()

	out := Reduce(state, models.Action{
		Kind:   models.ActionScaleObject,
		Target: "ghost_1",
		Params: models.ScaleObjectParams{Factor: 2},
	})

	assert.NotEmpty(t, out.Skipped)
	assert.Equal(t, state.Objects, out.State.Objects)
}

func TestReduceUnknownKindIsNoOp(t *testing.T) {
	state := models.DefaultScene()

	var action models.Action
	require.NoError(t, json.Unmarshal(
		[]byte(`{"action":"set_property","target":null,"params":{"property":"friction"}}`), &action))

	out := Reduce(state, action)
	assert.Contains(t, out.Skipped, "unknown action kind")
	assert.Equal(t, state.Objects, out.State.Objects)
}

func TestReduceRemoveClearsSelectionAndHighlights(t *testing.T) {
	state := models.DefaultScene()
	state.SelectedObjectID = "robot_arm_1"

	out := Reduce(state, models.Action{
		Kind:   models.ActionRemoveObject,
		Target: "robot_arm_1",
		Params: models.RemoveObjectParams{},
	})

	assert.Len(t, out.State.Objects, 1)
	assert.Empty(t, out.State.SelectedObjectID)
	assert.Equal(t, []string{"robot_arm_1"}, out.CancelHighlights)
}

func TestReduceRemoveKeepsOtherSelection(t *testing.T) {
	state := models.DefaultScene()
	state.SelectedObjectID = "conveyor_1"

	out := Reduce(state, models.Action{
		Kind:   models.ActionRemoveObject,
		Target: "robot_arm_1",
		Params: models.RemoveObjectParams{},
	})

	assert.Equal(t, "conveyor_1", out.State.SelectedObjectID)
}

func TestReduceHighlightEmitsRequest(t *testing.T) {
	state := models.DefaultScene()

	out := Reduce(state, models.Action{
		Kind:   models.ActionHighlightObject,
		Target: "conveyor_1",
		Params: models.HighlightObjectParams{Color: "#ffff00", Duration: 5000},
	})

	assert.True(t, out.State.FindObject("conveyor_1").Highlighted)
	assert.Equal(t, "conveyor_1", out.State.SelectedObjectID)
	require.NotNil(t, out.Highlight)
	assert.Equal(t, "conveyor_1", out.Highlight.ObjectID)
	assert.Equal(t, 5000, out.Highlight.DurationMS)
}

func TestReduceHighlightDefaultDuration(t *testing.T) {
	state := models.DefaultScene()

	out := Reduce(state, models.Action{
		Kind:   models.ActionHighlightObject,
		Target: "conveyor_1",
		Params: models.HighlightObjectParams{},
	})

	require.NotNil(t, out.Highlight)
	assert.Equal(t, DefaultHighlightDurationMS, out.Highlight.DurationMS)
}

func TestReduceCameraFocusLeavesStateToEngine(t *testing.T) {
	state := models.DefaultScene()
	pose := models.CameraPoseParams{
		Position: models.Vector3{X: 5, Y: 5, Z: 5},
		Target:   models.Vector3{Y: 1},
	}

	out := Reduce(state, models.Action{Kind: models.ActionCameraFocus, Params: pose})

	require.NotNil(t, out.Camera)
	assert.Equal(t, pose, *out.Camera)
	// Camera position is unchanged until the engine ticks.
	assert.Equal(t, state.Camera, out.State.Camera)
}

func TestReduceCameraZoom(t *testing.T) {
	state := models.DefaultScene()

	out := Reduce(state, models.Action{
		Kind:   models.ActionCameraZoom,
		Params: models.CameraZoomParams{Direction: "in", Amount: 0.5},
	})
	assert.InDelta(t, 1.5, out.State.Camera.Zoom, 1e-9)

	out = Reduce(out.State, models.Action{
		Kind:   models.ActionCameraZoom,
		Params: models.CameraZoomParams{Direction: "out", Amount: 0.5},
	})
	assert.InDelta(t, 1.0, out.State.Camera.Zoom, 1e-9)
}

func TestReduceResetKeepDefaults(t *testing.T) {
	state := models.EmptyScene()

	out := Reduce(state, models.Action{
		Kind:   models.ActionResetScene,
		Params: models.ResetSceneParams{KeepDefaults: true},
	})

	assert.True(t, out.ResetAll)
	assert.Equal(t, models.DefaultScene(), out.State)
}

func TestReduceResetToEmpty(t *testing.T) {
	state := models.DefaultScene()

	out := Reduce(state, models.Action{
		Kind:   models.ActionResetScene,
		Params: models.ResetSceneParams{KeepDefaults: false},
	})

	assert.True(t, out.ResetAll)
	assert.Empty(t, out.State.Objects)
	assert.Equal(t, models.DefaultCamera(), out.State.Camera)
}

func TestReduceSetLightingMergesPartially(t *testing.T) {
	state := models.DefaultScene()
	ambient := 0.9

	out := Reduce(state, models.Action{
		Kind:   models.ActionSetLighting,
		Params: models.SetLightingParams{AmbientIntensity: &ambient},
	})

	assert.Equal(t, 0.9, out.State.Lighting.AmbientIntensity)
	assert.Equal(t, 0.8, out.State.Lighting.DirectionalIntensity)
}

func TestReduceAddSafetyZoneDefaults(t *testing.T) {
	state := models.EmptyScene()

	out := Reduce(state, models.Action{
		Kind:   models.ActionAddSafetyZone,
		Target: "safety_zone_1",
		Params: models.AddSafetyZoneParams{Position: models.Vector3{X: 2}},
	})

	require.Len(t, out.State.Objects, 1)
	zone := out.State.Objects[0]
	assert.Equal(t, models.ObjectSafetyZone, zone.Type)
	assert.Equal(t, models.Vector3{X: 5, Y: 0.1, Z: 5}, zone.Scale)
	assert.Equal(t, "#ffff00", zone.Color)
}
