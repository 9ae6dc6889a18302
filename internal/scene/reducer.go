// internal/scene/reducer.go
package scene

import (
	"fmt"

	"github.com/simforge/studio3d/internal/models"
)

// Outcome is the result of reducing one action: the next state plus the
// deferred work the action requested. The reducer never talks to the camera
// engine or the highlight scheduler directly; it reports what they should
// do and the owner wires it up.
type Outcome struct {
	State models.SceneState

	// Camera, when non-nil, is a new transition target (last request wins).
	Camera *models.CameraPoseParams

	// Highlight, when non-nil, schedules an auto-revert for the object.
	Highlight *HighlightRequest

	// CancelHighlights lists object ids whose pending reverts must be
	// dropped (the objects are gone).
	CancelHighlights []string

	// ResetAll cancels the in-flight camera transition and every pending
	// highlight revert.
	ResetAll bool

	// Skipped carries a diagnostic when the action was a no-op. It is for
	// the caller's log, not the end user.
	Skipped string
}

// HighlightRequest asks the scheduler to revert a highlight after the
// duration (milliseconds).
type HighlightRequest struct {
	ObjectID   string
	DurationMS int
}

// DefaultHighlightDurationMS is used when highlight_object carries no
// duration.
const DefaultHighlightDurationMS = 3000

// Reduce applies one action to the state and returns the outcome. It is
// total: a structurally valid Action never fails, unknown kinds and missing
// targets degrade to no-ops with a diagnostic.
func Reduce(state models.SceneState, action models.Action) Outcome {
	next := state.Clone()
	out := Outcome{State: next}

	// Target-requiring kinds are silent no-ops when the object is gone;
	// the parser already reported unresolvable references.
	if action.Kind.RequiresObjectTarget() && !next.HasObject(action.Target) {
		out.Skipped = fmt.Sprintf("%s: no object %q", action.Kind, action.Target)
		return out
	}

	switch params := action.Params.(type) {
	case models.AddObjectParams:
		return reduceAdd(out, action.Target, params)

	case models.AddSafetyZoneParams:
		return reduceAddSafetyZone(out, action.Target, params)

	case models.RemoveObjectParams:
		return reduceRemove(out, action.Target)

	case models.MoveObjectParams:
		obj := out.State.FindObject(action.Target)
		if params.Absolute {
			obj.Position = params.Position
		} else {
			obj.Position = obj.Position.Add(params.Delta)
		}

	case models.RotateObjectParams:
		obj := out.State.FindObject(action.Target)
		switch params.Axis {
		case "x":
			obj.Rotation.X += params.Degrees
		case "z":
			obj.Rotation.Z += params.Degrees
		default: // y is the default axis
			obj.Rotation.Y += params.Degrees
		}

	case models.ScaleObjectParams:
		obj := out.State.FindObject(action.Target)
		obj.Scale = models.Vector3{X: params.Factor, Y: params.Factor, Z: params.Factor}

	case models.SetColorParams:
		out.State.FindObject(action.Target).Color = params.Color

	case models.SetVisibilityParams:
		out.State.FindObject(action.Target).Visible = params.Visible

	case models.HighlightObjectParams:
		obj := out.State.FindObject(action.Target)
		obj.Highlighted = true
		out.State.SelectedObjectID = obj.ID
		duration := params.Duration
		if duration <= 0 {
			duration = DefaultHighlightDurationMS
		}
		out.Highlight = &HighlightRequest{ObjectID: obj.ID, DurationMS: duration}

	case models.AnimateObjectParams:
		out.State.FindObject(action.Target).Animating = params.Animate

	case models.CameraPoseParams:
		// camera_focus / camera_move: handed to the transition engine,
		// CameraState itself is not touched here.
		pose := params
		out.Camera = &pose

	case models.CameraZoomParams:
		amount := params.Amount
		if amount <= 0 {
			amount = 0.5
		}
		switch params.Direction {
		case "out":
			out.State.Camera.Zoom /= 1 + amount
		default: // "in"
			out.State.Camera.Zoom *= 1 + amount
		}

	case models.ResetSceneParams:
		if params.KeepDefaults {
			out.State = models.DefaultScene()
		} else {
			out.State = models.EmptyScene()
		}
		out.ResetAll = true

	case models.SetLightingParams:
		if params.AmbientIntensity != nil {
			out.State.Lighting.AmbientIntensity = *params.AmbientIntensity
		}
		if params.DirectionalIntensity != nil {
			out.State.Lighting.DirectionalIntensity = *params.DirectionalIntensity
		}
		if params.DirectionalPosition != nil {
			out.State.Lighting.DirectionalPosition = *params.DirectionalPosition
		}

	default:
		out.Skipped = fmt.Sprintf("unknown action kind %q", action.Kind)
	}

	return out
}

// reduceAdd inserts a new object; an id collision is a no-op, id
// generation is the caller's contract.
func reduceAdd(out Outcome, id string, params models.AddObjectParams) Outcome {
	if id == "" || out.State.HasObject(id) {
		out.Skipped = fmt.Sprintf("add_object: id %q already exists or is empty", id)
		return out
	}

	scale := params.Scale
	if scale == (models.Vector3{}) {
		scale = models.Vector3{X: 1, Y: 1, Z: 1}
	}
	color := params.Color
	if color == "" {
		color = "#888888"
	}
	name := params.Name
	if name == "" {
		name = id
	}
	objType := params.Type
	if objType == "" {
		objType = models.ObjectCustom
	}

	out.State.Objects = append(out.State.Objects, models.SceneObject{
		ID:       id,
		Type:     objType,
		Name:     name,
		Position: params.Position,
		Rotation: params.Rotation,
		Scale:    scale,
		Color:    color,
		Visible:  true,
	})
	return out
}

// reduceAddSafetyZone inserts a flat zone marker; the size becomes the
// object's scale.
func reduceAddSafetyZone(out Outcome, id string, params models.AddSafetyZoneParams) Outcome {
	if id == "" || out.State.HasObject(id) {
		out.Skipped = fmt.Sprintf("add_safety_zone: id %q already exists or is empty", id)
		return out
	}

	size := params.Size
	if size == (models.Vector3{}) {
		size = models.Vector3{X: 5, Y: 0.1, Z: 5}
	}
	color := params.Color
	if color == "" {
		color = "#ffff00"
	}

	out.State.Objects = append(out.State.Objects, models.SceneObject{
		ID:       id,
		Type:     models.ObjectSafetyZone,
		Name:     "Safety Zone",
		Position: params.Position,
		Scale:    size,
		Color:    color,
		Visible:  true,
	})
	return out
}

// reduceRemove deletes the object, clears a matching selection and cancels
// its pending highlight revert.
func reduceRemove(out Outcome, id string) Outcome {
	objects := out.State.Objects
	for i := range objects {
		if objects[i].ID == id {
			out.State.Objects = append(objects[:i:i], objects[i+1:]...)
			break
		}
	}
	if out.State.SelectedObjectID == id {
		out.State.SelectedObjectID = ""
	}
	out.CancelHighlights = append(out.CancelHighlights, id)
	return out
}
