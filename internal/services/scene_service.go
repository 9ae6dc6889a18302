// internal/services/scene_service.go
package services

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	apperrors "github.com/simforge/studio3d/internal/errors"
	"github.com/simforge/studio3d/internal/models"
	"github.com/simforge/studio3d/internal/scene"
	"github.com/simforge/studio3d/internal/storage"
	"github.com/simforge/studio3d/internal/utils"
)

// scenesDir is the subdirectory of the data dir holding named snapshots.
const scenesDir = "scenes"

// sceneNamePattern restricts snapshot names to filename-safe tokens.
var sceneNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ApplyResult summarizes one batch of actions.
type ApplyResult struct {
	Applied int
	Skipped []string
}

// SceneService owns the authoritative SceneState. All mutation funnels
// through its mutex: action batches, engine ticks and snapshot loads are
// serialized, so the camera engine and highlight scheduler never need
// their own locking.
type SceneService struct {
	mu         sync.Mutex
	state      models.SceneState
	camera     *scene.CameraEngine
	highlights *scene.HighlightScheduler

	storage *storage.FileStorage
	logger  *utils.Logger
	metrics *utils.MetricsCollector

	// onChange receives a snapshot after every state change. Wired to the
	// websocket hub at boot.
	onChange func(models.SceneState)

	stopOnce sync.Once
	stop     chan struct{}
}

// NewSceneService creates the service with the default scene loaded.
func NewSceneService(fileStorage *storage.FileStorage, cameraTransition time.Duration) *SceneService {
	return &SceneService{
		state:      models.DefaultScene(),
		camera:     scene.NewCameraEngine(cameraTransition),
		highlights: scene.NewHighlightScheduler(),
		storage:    fileStorage,
		logger:     utils.GetLogger(),
		metrics:    utils.GetMetricsCollector(),
		stop:       make(chan struct{}),
	}
}

// SetOnChange registers the snapshot callback. Must be called before the
// first mutation.
func (s *SceneService) SetOnChange(fn func(models.SceneState)) {
	s.onChange = fn
}

// Snapshot returns a deep copy of the current state.
func (s *SceneService) Snapshot() models.SceneState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// ApplyActions folds a batch of actions into the state in order and wires
// each outcome's deferred work into the engines. It returns the state
// after the whole batch.
func (s *SceneService) ApplyActions(actions []models.Action) (models.SceneState, ApplyResult) {
	now := time.Now()
	var result ApplyResult

	s.mu.Lock()
	for _, action := range actions {
		out := scene.Reduce(s.state, action)
		s.state = out.State

		if out.Skipped != "" {
			result.Skipped = append(result.Skipped, out.Skipped)
			s.metrics.IncrementCounter(utils.MetricActionsSkipped)
			continue
		}
		result.Applied++
		s.metrics.IncrementCounter(utils.MetricActionsApplied)

		if out.ResetAll {
			s.camera.Cancel()
			s.highlights.CancelAll()
		}
		for _, id := range out.CancelHighlights {
			s.highlights.Cancel(id)
		}
		if out.Highlight != nil {
			s.highlights.Schedule(out.Highlight.ObjectID,
				time.Duration(out.Highlight.DurationMS)*time.Millisecond, now)
		}
		if out.Camera != nil {
			s.camera.Start(&s.state, *out.Camera, now)
		}
	}
	snapshot := s.state.Clone()
	s.mu.Unlock()

	for _, diag := range result.Skipped {
		s.logger.Debugf("action skipped: %s", diag)
	}
	if result.Applied > 0 {
		s.notify(snapshot)
	}
	return snapshot, result
}

// Reset replaces the scene with the default or empty scene.
func (s *SceneService) Reset(keepDefaults bool) models.SceneState {
	state, _ := s.ApplyActions([]models.Action{{
		Kind:   models.ActionResetScene,
		Params: models.ResetSceneParams{KeepDefaults: keepDefaults},
	}})
	return state
}

// Tick advances the camera transition and expires due highlight reverts.
// It reports whether the state changed.
func (s *SceneService) Tick(now time.Time) bool {
	s.mu.Lock()
	changed := s.camera.Tick(&s.state, now)
	for _, id := range s.highlights.Expired(now) {
		if obj := s.state.FindObject(id); obj != nil && obj.Highlighted {
			obj.Highlighted = false
			changed = true
		}
	}
	var snapshot models.SceneState
	if changed {
		snapshot = s.state.Clone()
	}
	s.mu.Unlock()

	if changed {
		s.notify(snapshot)
	}
	return changed
}

// Run drives Tick on the given interval until Stop is called.
func (s *SceneService) Run(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case now := <-ticker.C:
				s.Tick(now)
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the tick loop.
func (s *SceneService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// SaveScene persists the current state as a named snapshot.
func (s *SceneService) SaveScene(name string) error {
	if err := validateSceneName(name); err != nil {
		return err
	}

	snapshot := s.Snapshot()
	if err := s.storage.SaveJSONFile(scenesDir, name+".json", snapshot); err != nil {
		return apperrors.NewProcessingError(fmt.Sprintf("failed to save scene %q", name), err)
	}

	s.metrics.IncrementCounter(utils.MetricScenesSaved)
	s.logger.Infof("scene saved: %s", name)
	return nil
}

// LoadScene replaces the current state with a named snapshot. Pending
// camera transitions and highlight reverts are dropped; they belong to
// the state being replaced.
func (s *SceneService) LoadScene(name string) (models.SceneState, error) {
	if err := validateSceneName(name); err != nil {
		return models.SceneState{}, err
	}
	if !s.storage.FileExists(scenesDir, name+".json") {
		return models.SceneState{}, apperrors.NewNotFoundError(fmt.Sprintf("scene %q not found", name), nil)
	}

	var state models.SceneState
	if err := s.storage.LoadJSONFile(scenesDir, name+".json", &state); err != nil {
		return models.SceneState{}, apperrors.NewProcessingError(fmt.Sprintf("failed to load scene %q", name), err)
	}
	if state.Objects == nil {
		state.Objects = []models.SceneObject{}
	}

	s.mu.Lock()
	s.state = state
	s.camera.Cancel()
	s.highlights.CancelAll()
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.metrics.IncrementCounter(utils.MetricScenesLoaded)
	s.logger.Infof("scene loaded: %s", name)
	s.notify(snapshot)
	return snapshot, nil
}

// ListScenes lists the saved snapshot names.
func (s *SceneService) ListScenes() ([]string, error) {
	files, err := s.storage.ListFiles(scenesDir)
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to list scenes", err)
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		if strings.HasSuffix(f, ".json") {
			names = append(names, strings.TrimSuffix(f, ".json"))
		}
	}
	return names, nil
}

// DeleteScene removes a named snapshot.
func (s *SceneService) DeleteScene(name string) error {
	if err := validateSceneName(name); err != nil {
		return err
	}
	if !s.storage.FileExists(scenesDir, name+".json") {
		return apperrors.NewNotFoundError(fmt.Sprintf("scene %q not found", name), nil)
	}
	if err := s.storage.DeleteFile(scenesDir, name+".json"); err != nil {
		return apperrors.NewProcessingError(fmt.Sprintf("failed to delete scene %q", name), err)
	}
	return nil
}

func (s *SceneService) notify(snapshot models.SceneState) {
	if s.onChange != nil {
		s.onChange(snapshot)
	}
}

func validateSceneName(name string) error {
	if !sceneNamePattern.MatchString(name) {
		return apperrors.NewValidationError(
			"scene name must be 1-64 characters of letters, digits, '-' or '_'", nil)
	}
	return nil
}
