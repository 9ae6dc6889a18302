// internal/scene/camera.go
package scene

import (
	"math"
	"time"

	"github.com/simforge/studio3d/internal/models"
)

// DefaultTransitionDuration is how long a camera transition takes unless
// configured otherwise.
const DefaultTransitionDuration = time.Second

// CameraEngine eases the camera from its pose at transition start to a
// requested target pose. Two states: idle and transitioning. A new request
// always wins, discarding the progress of any in-flight transition.
//
// The engine is driven cooperatively: the owner calls Tick on its update
// loop while holding the state. It is not safe for concurrent use.
type CameraEngine struct {
	duration time.Duration

	active    bool
	startedAt time.Time
	startPos  models.Vector3
	endPos    models.Vector3
}

// NewCameraEngine creates an idle engine.
func NewCameraEngine(duration time.Duration) *CameraEngine {
	if duration <= 0 {
		duration = DefaultTransitionDuration
	}
	return &CameraEngine{duration: duration}
}

// Active reports whether a transition is in flight.
func (e *CameraEngine) Active() bool {
	return e.active
}

// Start begins (or restarts) a transition toward the pose. The look-at
// target is applied directly; only the position is eased.
func (e *CameraEngine) Start(state *models.SceneState, pose models.CameraPoseParams, now time.Time) {
	e.active = true
	e.startedAt = now
	e.startPos = state.Camera.Position
	e.endPos = pose.Position
	state.Camera.Target = pose.Target
}

// Cancel drops the pending interpolation and returns to idle. The camera
// stays wherever the last tick left it.
func (e *CameraEngine) Cancel() {
	e.active = false
}

// Tick advances the transition. It reports whether the camera position
// changed. On reaching full progress the engine returns to idle with the
// camera exactly at the target.
func (e *CameraEngine) Tick(state *models.SceneState, now time.Time) bool {
	if !e.active {
		return false
	}

	progress := float64(now.Sub(e.startedAt)) / float64(e.duration)
	if progress >= 1 {
		state.Camera.Position = e.endPos
		e.active = false
		return true
	}
	if progress < 0 {
		progress = 0
	}

	eased := 1 - math.Pow(1-progress, 3)
	state.Camera.Position = e.startPos.Lerp(e.endPos, eased)
	return true
}
