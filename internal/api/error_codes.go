// internal/api/error_codes.go
package api

// API error code constants.
const (
	// Generic errors
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorConflict      = "CONFLICT"

	// Prompt errors
	ErrorPromptInvalid = "PROMPT_INVALID"

	// Scene snapshot errors
	ErrorSceneNotFound = "SCENE_NOT_FOUND"
	ErrorSceneInvalid  = "SCENE_INVALID"
)
