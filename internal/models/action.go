// internal/models/action.go
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActionKind enumerates the canonical scene mutation vocabulary. The wire
// names match the frontend contract and must not change.
type ActionKind string

const (
	ActionAddObject       ActionKind = "add_object"
	ActionRemoveObject    ActionKind = "remove_object"
	ActionMoveObject      ActionKind = "move_object"
	ActionRotateObject    ActionKind = "rotate_object"
	ActionScaleObject     ActionKind = "scale_object"
	ActionSetColor        ActionKind = "set_color"
	ActionSetVisibility   ActionKind = "set_visibility"
	ActionSetProperty     ActionKind = "set_property"
	ActionCameraMove      ActionKind = "camera_move"
	ActionCameraZoom      ActionKind = "camera_zoom"
	ActionCameraFocus     ActionKind = "camera_focus"
	ActionAddSafetyZone   ActionKind = "add_safety_zone"
	ActionSetLighting     ActionKind = "set_lighting"
	ActionHighlightObject ActionKind = "highlight_object"
	ActionAnimateObject   ActionKind = "animate_object"
	ActionResetScene      ActionKind = "reset_scene"
)

// RequiresObjectTarget reports whether the kind mutates a single existing
// object, so a missing or unresolved target makes it a no-op.
func (k ActionKind) RequiresObjectTarget() bool {
	switch k {
	case ActionRemoveObject, ActionMoveObject, ActionRotateObject,
		ActionScaleObject, ActionSetColor, ActionSetVisibility,
		ActionHighlightObject, ActionAnimateObject:
		return true
	}
	return false
}

// ActionParams is the closed set of per-kind parameter records. Each kind
// carries its own typed variant; the dynamic bag exists only on the wire.
type ActionParams interface {
	isActionParams()
}

// AddObjectParams creates a new object under the action's target id.
type AddObjectParams struct {
	Type     ObjectType `json:"type"`
	Name     string     `json:"name"`
	Position Vector3    `json:"position"`
	Rotation Vector3    `json:"rotation"`
	Scale    Vector3    `json:"scale"`
	Color    string     `json:"color"`
}

// RemoveObjectParams has no fields; the action's target names the object.
type RemoveObjectParams struct{}

// MoveObjectParams either replaces the position (Absolute) or adds Delta.
type MoveObjectParams struct {
	Position Vector3 `json:"position"`
	Delta    Vector3 `json:"delta"`
	Absolute bool    `json:"absolute"`
}

// RotateObjectParams adds Degrees to the rotation component named by Axis.
type RotateObjectParams struct {
	Axis    string  `json:"axis"`
	Degrees float64 `json:"degrees"`
}

// ScaleObjectParams sets all three scale components to Factor.
type ScaleObjectParams struct {
	Factor float64 `json:"factor"`
}

// SetColorParams replaces the object's color.
type SetColorParams struct {
	Color string `json:"color"`
}

// SetVisibilityParams replaces the object's visibility flag.
type SetVisibilityParams struct {
	Visible bool `json:"visible"`
}

// HighlightObjectParams flags the object and schedules the auto-revert.
// Duration is milliseconds.
type HighlightObjectParams struct {
	Color    string `json:"color"`
	Duration int    `json:"duration"`
}

// CameraPoseParams carries the requested camera pose for camera_focus and
// camera_move; the transition engine eases toward it.
type CameraPoseParams struct {
	Position Vector3 `json:"position"`
	Target   Vector3 `json:"target"`
}

// CameraZoomParams multiplies the zoom: "in" by 1+Amount, "out" by
// 1/(1+Amount).
type CameraZoomParams struct {
	Direction string  `json:"direction"`
	Amount    float64 `json:"amount"`
}

// AddSafetyZoneParams creates a flat safety zone marker.
type AddSafetyZoneParams struct {
	Position Vector3 `json:"position"`
	Color    string  `json:"color"`
	Size     Vector3 `json:"size"`
}

// AnimateObjectParams starts or stops the object's animation flag.
type AnimateObjectParams struct {
	Animate bool `json:"animate"`
}

// ResetSceneParams clears the scene; KeepDefaults restores the canonical
// default objects instead of leaving it empty.
type ResetSceneParams struct {
	KeepDefaults bool `json:"keep_defaults"`
}

// SetLightingParams shallow-merges into LightingConfig; nil fields are
// left untouched.
type SetLightingParams struct {
	AmbientIntensity     *float64 `json:"ambient_intensity,omitempty"`
	DirectionalIntensity *float64 `json:"directional_intensity,omitempty"`
	DirectionalPosition  *Vector3 `json:"directional_position,omitempty"`
}

// RawParams preserves the wire payload of kinds this build does not
// interpret (for example set_property). The reducer treats them as no-ops.
type RawParams struct {
	Data json.RawMessage
}

func (AddObjectParams) isActionParams()       {}
func (RemoveObjectParams) isActionParams()    {}
func (MoveObjectParams) isActionParams()      {}
func (RotateObjectParams) isActionParams()    {}
func (ScaleObjectParams) isActionParams()     {}
func (SetColorParams) isActionParams()        {}
func (SetVisibilityParams) isActionParams()   {}
func (HighlightObjectParams) isActionParams() {}
func (CameraPoseParams) isActionParams()      {}
func (CameraZoomParams) isActionParams()      {}
func (AddSafetyZoneParams) isActionParams()   {}
func (AnimateObjectParams) isActionParams()   {}
func (ResetSceneParams) isActionParams()      {}
func (SetLightingParams) isActionParams()     {}
func (RawParams) isActionParams()             {}

// Action is one canonical scene instruction. Target is an object id, or
// empty for camera/global actions (serialized as null).
type Action struct {
	Kind   ActionKind
	Target string
	Params ActionParams
}

// wireAction is the exact `{action, target, params}` wire shape.
type wireAction struct {
	Action ActionKind      `json:"action"`
	Target *string         `json:"target"`
	Params json.RawMessage `json:"params"`
}

// MarshalJSON emits the wire shape. A nil Params marshals as {}.
func (a Action) MarshalJSON() ([]byte, error) {
	w := wireAction{Action: a.Kind}
	if a.Target != "" {
		w.Target = &a.Target
	}

	var (
		payload []byte
		err     error
	)
	switch p := a.Params.(type) {
	case nil:
		payload = []byte("{}")
	case RawParams:
		payload = p.Data
		if len(payload) == 0 {
			payload = []byte("{}")
		}
	default:
		payload, err = json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshal %s params: %w", a.Kind, err)
		}
	}
	w.Params = payload

	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire shape into the typed variant for the kind.
// Unrecognized kinds keep their payload as RawParams so round-trips are
// lossless.
func (a *Action) UnmarshalJSON(data []byte) error {
	var w wireAction
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	a.Kind = w.Action
	a.Target = ""
	if w.Target != nil {
		a.Target = *w.Target
	}

	payload := w.Params
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	params := newParams(w.Action)
	if params == nil {
		a.Params = RawParams{Data: payload}
		return nil
	}
	if err := json.Unmarshal(payload, params); err != nil {
		return fmt.Errorf("unmarshal %s params: %w", w.Action, err)
	}
	a.Params = deref(params)
	return nil
}

// newParams returns a pointer to the zero variant for known kinds.
func newParams(kind ActionKind) ActionParams {
	switch kind {
	case ActionAddObject:
		return &AddObjectParams{}
	case ActionRemoveObject:
		return &RemoveObjectParams{}
	case ActionMoveObject:
		return &MoveObjectParams{}
	case ActionRotateObject:
		return &RotateObjectParams{}
	case ActionScaleObject:
		return &ScaleObjectParams{}
	case ActionSetColor:
		return &SetColorParams{}
	case ActionSetVisibility:
		return &SetVisibilityParams{}
	case ActionHighlightObject:
		return &HighlightObjectParams{}
	case ActionCameraFocus, ActionCameraMove:
		return &CameraPoseParams{}
	case ActionCameraZoom:
		return &CameraZoomParams{}
	case ActionAddSafetyZone:
		return &AddSafetyZoneParams{}
	case ActionAnimateObject:
		return &AnimateObjectParams{}
	case ActionResetScene:
		return &ResetSceneParams{}
	case ActionSetLighting:
		return &SetLightingParams{}
	}
	return nil
}

// deref converts the decode pointer back to the value variant.
func deref(p ActionParams) ActionParams {
	switch v := p.(type) {
	case *AddObjectParams:
		return *v
	case *RemoveObjectParams:
		return *v
	case *MoveObjectParams:
		return *v
	case *RotateObjectParams:
		return *v
	case *ScaleObjectParams:
		return *v
	case *SetColorParams:
		return *v
	case *SetVisibilityParams:
		return *v
	case *HighlightObjectParams:
		return *v
	case *CameraPoseParams:
		return *v
	case *CameraZoomParams:
		return *v
	case *AddSafetyZoneParams:
		return *v
	case *AnimateObjectParams:
		return *v
	case *ResetSceneParams:
		return *v
	case *SetLightingParams:
		return *v
	}
	return p
}

// ActionResponse is the parser output contract: the API response body and
// the value stored in history entries.
type ActionResponse struct {
	Success        bool     `json:"success"`
	Actions        []Action `json:"actions"`
	Message        string   `json:"message"`
	OriginalPrompt string   `json:"original_prompt"`
}

// PromptHistoryEntry records one prompt round-trip.
type PromptHistoryEntry struct {
	ID        string         `json:"id"`
	Prompt    string         `json:"prompt"`
	Response  ActionResponse `json:"response"`
	Timestamp time.Time      `json:"timestamp"`
}
