// internal/models/scene.go
package models

// Vector3 is a point or extent in scene space. Rotation components are
// degrees and are not normalized mod 360.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns the component-wise sum of v and d.
func (v Vector3) Add(d Vector3) Vector3 {
	return Vector3{X: v.X + d.X, Y: v.Y + d.Y, Z: v.Z + d.Z}
}

// Lerp returns the linear interpolation between v and target at t in [0, 1].
func (v Vector3) Lerp(target Vector3, t float64) Vector3 {
	return Vector3{
		X: v.X + (target.X-v.X)*t,
		Y: v.Y + (target.Y-v.Y)*t,
		Z: v.Z + (target.Z-v.Z)*t,
	}
}

// ObjectType enumerates the closed set of scene object kinds.
type ObjectType string

const (
	ObjectConveyor   ObjectType = "conveyor"
	ObjectRobotArm   ObjectType = "robot_arm"
	ObjectBox        ObjectType = "box"
	ObjectSafetyZone ObjectType = "safety_zone"
	ObjectCylinder   ObjectType = "cylinder"
	ObjectSphere     ObjectType = "sphere"
	ObjectCustom     ObjectType = "custom"
)

// SceneObject is a single entity in the scene. ID is unique within a
// SceneState for the object's whole lifetime.
type SceneObject struct {
	ID          string     `json:"id"`
	Type        ObjectType `json:"type"`
	Name        string     `json:"name"`
	Position    Vector3    `json:"position"`
	Rotation    Vector3    `json:"rotation"`
	Scale       Vector3    `json:"scale"`
	Color       string     `json:"color"`
	Visible     bool       `json:"visible"`
	Highlighted bool       `json:"highlighted"` // transient, reverted by the highlight scheduler
	Animating   bool       `json:"animating"`
}

// CameraState holds the camera pose and zoom multiplier.
type CameraState struct {
	Position Vector3 `json:"position"`
	Target   Vector3 `json:"target"`
	Zoom     float64 `json:"zoom"`
}

// LightingConfig controls ambient and directional light.
type LightingConfig struct {
	AmbientIntensity     float64 `json:"ambient_intensity"`
	DirectionalIntensity float64 `json:"directional_intensity"`
	DirectionalPosition  Vector3 `json:"directional_position"`
}

// EnvironmentConfig controls the floor grid and background.
type EnvironmentConfig struct {
	GridVisible     bool    `json:"grid_visible"`
	GridSize        float64 `json:"grid_size"`
	BackgroundColor string  `json:"background_color"`
}

// SceneState is the full exportable scene. Object order is insertion order;
// it matters for iteration and the resolver tie-break, not for semantics.
type SceneState struct {
	Objects     []SceneObject     `json:"objects"`
	Camera      CameraState       `json:"camera"`
	Lighting    LightingConfig    `json:"lighting"`
	Environment EnvironmentConfig `json:"environment"`

	// SelectedObjectID tracks the UI selection; cleared whenever the
	// selected object is removed or the scene resets.
	SelectedObjectID string `json:"selected_object_id,omitempty"`
}

// Clone returns a deep copy. Callers outside the reducer must never hold
// the live objects slice.
func (s SceneState) Clone() SceneState {
	out := s
	out.Objects = make([]SceneObject, len(s.Objects))
	copy(out.Objects, s.Objects)
	return out
}

// FindObject returns a pointer into the objects slice, or nil.
func (s *SceneState) FindObject(id string) *SceneObject {
	for i := range s.Objects {
		if s.Objects[i].ID == id {
			return &s.Objects[i]
		}
	}
	return nil
}

// HasObject reports whether an object with the given id exists.
func (s *SceneState) HasObject(id string) bool {
	return s.FindObject(id) != nil
}

// DefaultCamera returns the boot camera pose.
func DefaultCamera() CameraState {
	return CameraState{
		Position: Vector3{X: 10, Y: 10, Z: 10},
		Target:   Vector3{},
		Zoom:     1,
	}
}

// DefaultLighting returns the boot lighting configuration.
func DefaultLighting() LightingConfig {
	return LightingConfig{
		AmbientIntensity:     0.4,
		DirectionalIntensity: 0.8,
		DirectionalPosition:  Vector3{X: 10, Y: 20, Z: 10},
	}
}

// DefaultEnvironment returns the boot environment configuration.
func DefaultEnvironment() EnvironmentConfig {
	return EnvironmentConfig{
		GridVisible:     true,
		GridSize:        50,
		BackgroundColor: "#1a1a2e",
	}
}

// DefaultScene returns the canonical two-object factory floor: a conveyor
// and a robot arm. reset_scene with keep_defaults restores exactly this.
func DefaultScene() SceneState {
	return SceneState{
		Objects: []SceneObject{
			{
				ID:       "conveyor_1",
				Type:     ObjectConveyor,
				Name:     "Main Conveyor",
				Position: Vector3{X: 0, Y: 0.5, Z: 0},
				Scale:    Vector3{X: 1, Y: 1, Z: 1},
				Color:    "#888888",
				Visible:  true,
			},
			{
				ID:       "robot_arm_1",
				Type:     ObjectRobotArm,
				Name:     "Robot Arm",
				Position: Vector3{X: -5, Y: 0, Z: 0},
				Scale:    Vector3{X: 1, Y: 1, Z: 1},
				Color:    "#ff8844",
				Visible:  true,
			},
		},
		Camera:      DefaultCamera(),
		Lighting:    DefaultLighting(),
		Environment: DefaultEnvironment(),
	}
}

// EmptyScene returns a scene with no objects and default camera, lighting
// and environment.
func EmptyScene() SceneState {
	return SceneState{
		Objects:     []SceneObject{},
		Camera:      DefaultCamera(),
		Lighting:    DefaultLighting(),
		Environment: DefaultEnvironment(),
	}
}
