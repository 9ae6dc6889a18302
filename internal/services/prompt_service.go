// internal/services/prompt_service.go
package services

import (
	"strings"

	apperrors "github.com/simforge/studio3d/internal/errors"
	"github.com/simforge/studio3d/internal/models"
	"github.com/simforge/studio3d/internal/parser"
	"github.com/simforge/studio3d/internal/scene"
	"github.com/simforge/studio3d/internal/utils"
)

// maxPromptLength bounds the accepted prompt size.
const maxPromptLength = 1000

// PromptService turns free-text prompts into applied scene changes. It
// composes the parser, the scene service and the history log; the parser
// itself never touches live state.
type PromptService struct {
	parser  *parser.Parser
	scenes  *SceneService
	history *scene.HistoryLog

	logger  *utils.Logger
	metrics *utils.MetricsCollector
}

// NewPromptService creates the prompt pipeline.
func NewPromptService(p *parser.Parser, scenes *SceneService, history *scene.HistoryLog) *PromptService {
	return &PromptService{
		parser:  p,
		scenes:  scenes,
		history: history,
		logger:  utils.GetLogger(),
		metrics: utils.GetMetricsCollector(),
	}
}

// Preview parses a prompt against the current scene without applying the
// actions or recording history.
func (s *PromptService) Preview(prompt string) (models.ActionResponse, error) {
	prompt, err := checkPrompt(prompt)
	if err != nil {
		return models.ActionResponse{}, err
	}

	resp := s.parser.Parse(prompt, s.scenes.Snapshot().Objects)
	s.countParse(resp)
	return resp, nil
}

// Execute parses a prompt, applies the resulting actions and records the
// round-trip in history. The returned state is the scene after the batch.
func (s *PromptService) Execute(prompt string) (models.ActionResponse, models.SceneState, error) {
	prompt, err := checkPrompt(prompt)
	if err != nil {
		return models.ActionResponse{}, models.SceneState{}, err
	}

	resp := s.parser.Parse(prompt, s.scenes.Snapshot().Objects)
	s.countParse(resp)

	var state models.SceneState
	if resp.Success {
		var result ApplyResult
		state, result = s.scenes.ApplyActions(resp.Actions)
		s.logger.Infof("prompt applied: %d action(s), %d skipped", result.Applied, len(result.Skipped))
	} else {
		state = s.scenes.Snapshot()
		s.logger.Debugf("prompt not understood: %q", prompt)
	}

	s.history.Add(resp)
	return resp, state, nil
}

// History returns the recorded prompt round-trips, newest first.
func (s *PromptService) History() []models.PromptHistoryEntry {
	return s.history.Entries()
}

// ClearHistory empties the prompt history.
func (s *PromptService) ClearHistory() {
	s.history.Clear()
}

func (s *PromptService) countParse(resp models.ActionResponse) {
	if resp.Success {
		s.metrics.IncrementCounter(utils.MetricPromptsParsed)
	} else {
		s.metrics.IncrementCounter(utils.MetricPromptsFailed)
	}
}

func checkPrompt(prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", apperrors.NewValidationError("prompt must not be empty", nil)
	}
	if len(prompt) > maxPromptLength {
		return "", apperrors.NewValidationError("prompt is too long", nil)
	}
	return prompt, nil
}
