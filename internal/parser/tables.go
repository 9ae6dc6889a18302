// internal/parser/tables.go
package parser

import (
	"regexp"

	"github.com/simforge/studio3d/internal/models"
)

// objectAlias maps a natural-language phrase to an object type. Matching
// picks the earliest occurrence in the clause, longest phrase first, so
// "robot arm" wins over "arm".
type objectAlias struct {
	Phrase string
	Type   models.ObjectType
}

var objectAliases = []objectAlias{
	{"robotic arm", models.ObjectRobotArm},
	{"robot arm", models.ObjectRobotArm},
	{"robot", models.ObjectRobotArm},
	{"arm", models.ObjectRobotArm},
	{"conveyor belt", models.ObjectConveyor},
	{"conveyor", models.ObjectConveyor},
	{"belt", models.ObjectConveyor},
	{"box", models.ObjectBox},
	{"cube", models.ObjectBox},
	{"crate", models.ObjectBox},
	{"package", models.ObjectBox},
	{"safety zone", models.ObjectSafetyZone},
	{"safety area", models.ObjectSafetyZone},
	{"hazard zone", models.ObjectSafetyZone},
	{"warning zone", models.ObjectSafetyZone},
	{"cylinder", models.ObjectCylinder},
	{"pipe", models.ObjectCylinder},
	{"sphere", models.ObjectSphere},
	{"ball", models.ObjectSphere},
}

// colorTable maps color names to the hex values the renderer expects.
var colorTable = map[string]string{
	"red":    "#ff4444",
	"green":  "#44ff44",
	"blue":   "#4444ff",
	"yellow": "#ffff44",
	"orange": "#ff8844",
	"purple": "#8844ff",
	"pink":   "#ff44ff",
	"cyan":   "#44ffff",
	"white":  "#ffffff",
	"black":  "#222222",
	"gray":   "#888888",
	"grey":   "#888888",
	"silver": "#c0c0c0",
	"gold":   "#ffd700",
	"brown":  "#8b4513",
}

const (
	defaultObjectColor    = "#888888"
	defaultHighlightColor = "#ffff00"
)

// positionKeyword maps a placement phrase to an offset. Ordered by
// specificity; the earliest occurrence in the clause wins.
type positionKeyword struct {
	Phrase string
	Offset models.Vector3
}

var positionKeywords = []positionKeyword{
	{"next to", models.Vector3{X: 3}},
	{"beside", models.Vector3{X: 3}},
	{"near", models.Vector3{X: 2, Z: 2}},
	{"above", models.Vector3{Y: 3}},
	{"below", models.Vector3{Y: -3}},
	{"on the left", models.Vector3{X: -5}},
	{"on the right", models.Vector3{X: 5}},
	{"on the front", models.Vector3{Z: 5}},
	{"on the back", models.Vector3{Z: -5}},
	{"on", models.Vector3{Y: 1}},
	{"left", models.Vector3{X: -5}},
	{"right", models.Vector3{X: 5}},
	{"front", models.Vector3{Z: 5}},
	{"back", models.Vector3{Z: -5}},
	{"behind", models.Vector3{Z: -5}},
	{"center", models.Vector3{}},
	{"middle", models.Vector3{}},
}

// positionKeywordRes holds the word-boundary matcher for each placement
// phrase, in table order.
var positionKeywordRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(positionKeywords))
	for i, kw := range positionKeywords {
		res[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw.Phrase) + `\b`)
	}
	return res
}()

// groundLevelKeywords imply placement on the floor next to the reference
// object, so the reference object's height is ignored.
var groundLevelKeywords = map[string]bool{
	"near": true, "beside": true, "next to": true,
	"left": true, "right": true, "front": true, "back": true,
	"on the left": true, "on the right": true,
	"on the front": true, "on the back": true,
}

// cameraPresets are the named viewpoints the camera parser recognizes.
var cameraPresets = []struct {
	Phrase string
	Pose   models.CameraPoseParams
}{
	{"inspection area", models.CameraPoseParams{
		Position: models.Vector3{X: 5, Y: 5, Z: 5},
		Target:   models.Vector3{Y: 1},
	}},
	{"conveyor", models.CameraPoseParams{
		Position: models.Vector3{Y: 8, Z: 10},
	}},
	{"robot", models.CameraPoseParams{
		Position: models.Vector3{X: 8, Y: 6, Z: 8},
		Target:   models.Vector3{X: -3, Y: 2},
	}},
	{"overview", models.CameraPoseParams{
		Position: models.Vector3{X: 15, Y: 15, Z: 15},
	}},
	{"top", models.CameraPoseParams{
		Position: models.Vector3{Y: 20, Z: 0.1},
	}},
	{"side", models.CameraPoseParams{
		Position: models.Vector3{X: 20, Y: 5},
		Target:   models.Vector3{Y: 2},
	}},
}

var (
	reHexColor = regexp.MustCompile(`#[0-9a-fA-F]{6}`)
	reNumber   = regexp.MustCompile(`[-+]?\d*\.?\d+`)
	reCoords   = regexp.MustCompile(`\(?\s*(-?\d+\.?\d*)\s*,\s*(-?\d+\.?\d*)\s*,\s*(-?\d+\.?\d*)\s*\)?`)

	reAddVerb       = regexp.MustCompile(`\b(add|create|place|put|insert|spawn|generate)\b`)
	reRemoveVerb    = regexp.MustCompile(`\b(remove|delete|destroy|clear|erase)\b`)
	reRotateVerb    = regexp.MustCompile(`\b(rotate|turn|spin|twist|orient)\b`)
	reMoveVerb      = regexp.MustCompile(`\b(move|shift|translate|position|relocate)\b`)
	reScaleVerb     = regexp.MustCompile(`\b(scale|resize|grow|shrink|enlarge|expand|reduce)\b`)
	reColorVerb     = regexp.MustCompile(`\b(color|paint|make|set|change)\b`)
	reHighlightVerb = regexp.MustCompile(`\b(highlight|glow|mark|emphasize|select)\b`)
	reCameraVerb    = regexp.MustCompile(`\b(zoom|camera|view|look|focus|pan)\b`)
	reHideVerb      = regexp.MustCompile(`\b(hide|invisible)\b`)
	reShowVerb      = regexp.MustCompile(`\b(show|visible|reveal)\b`)
	reResetPhrase   = regexp.MustCompile(`\b(reset|clear|restart)\b(?:\s+the)?\s*\b(scene|all|everything)\b`)
	reAnimateVerb   = regexp.MustCompile(`\b(animate|start|run|activate)\b`)
	reStopVerb      = regexp.MustCompile(`\b(stop|pause|deactivate)\b`)

	// reLeadingVerb matches a fragment that opens with any instruction
	// verb; the union of the verb alternations above.
	reLeadingVerb = regexp.MustCompile(`^(?:` +
		`add|create|place|put|insert|spawn|generate|` +
		`remove|delete|destroy|clear|erase|` +
		`rotate|turn|spin|twist|orient|` +
		`move|shift|translate|position|relocate|` +
		`scale|resize|grow|shrink|enlarge|expand|reduce|` +
		`color|paint|make|set|change|` +
		`highlight|glow|mark|emphasize|select|` +
		`zoom|camera|view|look|focus|pan|` +
		`hide|invisible|show|visible|reveal|` +
		`reset|restart|` +
		`animate|start|run|activate|stop|pause|deactivate` +
		`)\b`)

	degreePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*degrees?`),
		regexp.MustCompile(`(\d+)\s*deg\b`),
		regexp.MustCompile(`(\d+)°`),
		regexp.MustCompile(`rotate.*?(\d+)`),
		regexp.MustCompile(`turn.*?(\d+)`),
	}
)
