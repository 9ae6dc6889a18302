// internal/parser/parser.go
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/simforge/studio3d/internal/models"
)

// FailureHint is returned when no clause of a prompt produced an action.
const FailureHint = "Could not understand the prompt. Try commands like " +
	"'add robot arm', 'rotate conveyor 45 degrees', or 'zoom to inspection area'."

// Defaults are the parameter values applied when a prompt leaves them out.
type Defaults struct {
	HighlightDurationMS int
	ZoomAmount          float64
	MoveAmount          float64
	RotateDegrees       float64
}

// StandardDefaults mirrors the renderer contract.
func StandardDefaults() Defaults {
	return Defaults{
		HighlightDurationMS: 3000,
		ZoomAmount:          0.5,
		MoveAmount:          2,
		RotateDegrees:       30,
	}
}

// Parser turns normalized free text into canonical actions. It is pure with
// respect to scene state: the caller passes a snapshot of the objects and
// the parser never retains it. The only internal state is the per-type id
// counter used to fabricate collision-free object ids.
type Parser struct {
	resolver *Resolver
	defaults Defaults

	mu       sync.Mutex
	counters map[models.ObjectType]int
}

// NewParser creates a prompt parser.
func NewParser(resolver *Resolver, defaults Defaults) *Parser {
	if defaults.HighlightDurationMS <= 0 {
		defaults = StandardDefaults()
	}
	return &Parser{
		resolver: resolver,
		defaults: defaults,
		counters: make(map[models.ObjectType]int),
	}
}

// batch tracks context across the clauses of one prompt: the snapshot plus
// any objects fabricated so far, and the id pronouns resolve to.
type batch struct {
	objects  []models.SceneObject
	recentID string
}

var (
	reClauseSplit = regexp.MustCompile(`\s*(?:,|;|\bthen\b)\s*`)
	reAndBreak    = regexp.MustCompile(`\s+and\s+`)
)

// coordComma stands in for the commas of a coordinate triple while the
// splitter runs; the commas inside "(3, 0, -2)" are data, not clause
// boundaries.
const coordComma = "\x00"

// splitClauses breaks a compound prompt into independently parseable
// fragments. Coordinate triples keep their commas, and a bare "and"
// separates clauses only when it introduces a new instruction.
func splitClauses(text string) []string {
	protected := reCoords.ReplaceAllStringFunc(text, func(m string) string {
		return strings.ReplaceAll(m, ",", coordComma)
	})

	parts := reClauseSplit.Split(protected, -1)
	clauses := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "and "))
		if part == "" {
			continue
		}
		for _, clause := range splitConjunctions(part) {
			clause = strings.TrimSpace(strings.ReplaceAll(clause, coordComma, ","))
			if clause != "" {
				clauses = append(clauses, clause)
			}
		}
	}
	return clauses
}

// splitConjunctions cuts a fragment at "and" wherever the next word is an
// instruction verb, so "add a box and rotate the belt" becomes two clauses
// while phrases like "up and down" or "black and white" stay whole.
func splitConjunctions(fragment string) []string {
	segments := reAndBreak.Split(fragment, -1)
	if len(segments) == 1 {
		return segments
	}
	merged := []string{segments[0]}
	for _, seg := range segments[1:] {
		if reLeadingVerb.MatchString(seg) {
			merged = append(merged, seg)
		} else {
			merged[len(merged)-1] += " and " + seg
		}
	}
	return merged
}

// Parse converts a prompt into an ActionResponse. Each clause is parsed
// independently; one failing clause never invalidates its siblings.
func (p *Parser) Parse(prompt string, objects []models.SceneObject) models.ActionResponse {
	resp := models.ActionResponse{
		Actions:        []models.Action{},
		OriginalPrompt: prompt,
	}

	b := &batch{objects: append([]models.SceneObject(nil), objects...)}

	var reasons []string
	for _, clause := range splitClauses(normalize(prompt)) {
		actions, reason := p.parseClause(clause, b)
		resp.Actions = append(resp.Actions, actions...)
		if reason != "" {
			reasons = append(reasons, reason)
		}
	}

	resp.Success = len(resp.Actions) > 0
	resp.Message = buildMessage(resp.Actions, reasons)
	return resp
}

// buildMessage summarizes parsed actions and reports skipped clauses.
func buildMessage(actions []models.Action, reasons []string) string {
	if len(actions) == 0 {
		return FailureHint
	}

	descs := make([]string, len(actions))
	for i, a := range actions {
		descs[i] = string(a.Kind)
		if a.Target != "" {
			descs[i] += " on " + a.Target
		}
	}
	msg := fmt.Sprintf("Parsed %d action(s): %s", len(actions), strings.Join(descs, ", "))
	if len(reasons) > 0 {
		msg += "; skipped: " + strings.Join(reasons, "; ")
	}
	return msg
}

// parseClause tries the intent table in priority order; the first intent
// whose pattern matches owns the clause. A matched intent that cannot
// complete (usually an unresolved target) returns a reason instead of
// falling through.
func (p *Parser) parseClause(clause string, b *batch) ([]models.Action, string) {
	type intent func(string, *batch) ([]models.Action, string, bool)

	intents := []intent{
		p.parseAdd,
		p.parseRemove,
		p.parseRotate,
		p.parseMove,
		p.parseScale,
		p.parseColor,
		p.parseHighlight,
		p.parseCamera,
		p.parseVisibility,
		p.parseReset,
		p.parseAnimate,
		p.inferAdd,
	}

	for _, try := range intents {
		if actions, reason, matched := try(clause, b); matched {
			return actions, reason
		}
	}
	return nil, fmt.Sprintf("no recognizable instruction in %q", clause)
}

// ---------------------------------------------------------------------------
// intent parsers
// ---------------------------------------------------------------------------

func (p *Parser) parseAdd(clause string, b *batch) ([]models.Action, string, bool) {
	if !reAddVerb.MatchString(clause) {
		return nil, "", false
	}
	objType, _, ok := extractObjectType(clause)
	if !ok {
		return nil, "", false
	}
	return p.makeAdd(clause, b, objType), "", true
}

// inferAdd is the last-resort intent: a clause naming an object type with no
// recognizable verb is treated as a request to add that object.
func (p *Parser) inferAdd(clause string, b *batch) ([]models.Action, string, bool) {
	objType, _, ok := extractObjectType(clause)
	if !ok {
		return nil, "", false
	}
	return p.makeAdd(clause, b, objType), "", true
}

// makeAdd fabricates the new object, records it in the batch context and
// emits add_object or add_safety_zone.
func (p *Parser) makeAdd(clause string, b *batch, objType models.ObjectType) []models.Action {
	position, _ := extractPosition(clause, b.objects)
	id := p.generateID(objType, b.objects)

	var action models.Action
	if objType == models.ObjectSafetyZone {
		color, ok := extractColor(clause)
		if !ok {
			color = defaultHighlightColor
		}
		action = models.Action{
			Kind:   models.ActionAddSafetyZone,
			Target: id,
			Params: models.AddSafetyZoneParams{
				Position: position,
				Color:    color,
				Size:     models.Vector3{X: 5, Y: 0.1, Z: 5},
			},
		}
	} else {
		color, ok := extractColor(clause)
		if !ok {
			color = defaultObjectColor
		}
		action = models.Action{
			Kind:   models.ActionAddObject,
			Target: id,
			Params: models.AddObjectParams{
				Type:     objType,
				Name:     displayName(objType),
				Position: position,
				Scale:    models.Vector3{X: 1, Y: 1, Z: 1},
				Color:    color,
			},
		}
	}

	b.objects = append(b.objects, models.SceneObject{
		ID:       id,
		Type:     objType,
		Name:     displayName(objType),
		Position: position,
		Visible:  true,
	})
	b.recentID = id

	return []models.Action{action}
}

func (p *Parser) parseRemove(clause string, b *batch) ([]models.Action, string, bool) {
	if !reRemoveVerb.MatchString(clause) {
		return nil, "", false
	}
	if id, ok := p.resolveTarget(clause, b); ok {
		b.dropObject(id)
		return []models.Action{{Kind: models.ActionRemoveObject, Target: id, Params: models.RemoveObjectParams{}}}, "", true
	}
	if containsAny(clause, "all", "everything", "scene") {
		return []models.Action{{
			Kind:   models.ActionResetScene,
			Params: models.ResetSceneParams{KeepDefaults: false},
		}}, "", true
	}
	return nil, fmt.Sprintf("could not resolve an object to remove in %q", clause), true
}

func (p *Parser) parseRotate(clause string, b *batch) ([]models.Action, string, bool) {
	if !reRotateVerb.MatchString(clause) {
		return nil, "", false
	}
	id, ok := p.resolveTarget(clause, b)
	if !ok {
		return nil, fmt.Sprintf("could not resolve an object to rotate in %q", clause), true
	}
	degrees, ok := extractDegrees(clause)
	if !ok {
		degrees = p.defaults.RotateDegrees
	}
	return []models.Action{{
		Kind:   models.ActionRotateObject,
		Target: id,
		Params: models.RotateObjectParams{Axis: extractAxis(clause), Degrees: degrees},
	}}, "", true
}

func (p *Parser) parseMove(clause string, b *batch) ([]models.Action, string, bool) {
	if !reMoveVerb.MatchString(clause) {
		return nil, "", false
	}
	id, ok := p.resolveTarget(clause, b)
	if !ok {
		return nil, fmt.Sprintf("could not resolve an object to move in %q", clause), true
	}

	// Explicit coordinates always mean an absolute move.
	if coords, ok := extractCoords(clause); ok {
		return []models.Action{{
			Kind:   models.ActionMoveObject,
			Target: id,
			Params: models.MoveObjectParams{Position: coords, Absolute: true},
		}}, "", true
	}

	amount := extractNumber(clause, p.defaults.MoveAmount)
	var delta models.Vector3
	switch {
	case containsWord(clause, "left"):
		delta.X = -amount
	case containsWord(clause, "right"):
		delta.X = amount
	}
	switch {
	case containsWord(clause, "up"):
		delta.Y = amount
	case containsWord(clause, "down"):
		delta.Y = -amount
	}
	switch {
	case containsWord(clause, "forward"), containsWord(clause, "front"):
		delta.Z = amount
	case containsWord(clause, "back"), containsWord(clause, "backward"):
		delta.Z = -amount
	}

	if delta == (models.Vector3{}) {
		// No directional keyword: fall back to a described placement,
		// applied as an absolute position.
		if pos, ok := extractPosition(clause, b.objects); ok {
			return []models.Action{{
				Kind:   models.ActionMoveObject,
				Target: id,
				Params: models.MoveObjectParams{Position: pos, Absolute: true},
			}}, "", true
		}
	}

	return []models.Action{{
		Kind:   models.ActionMoveObject,
		Target: id,
		Params: models.MoveObjectParams{Delta: delta, Absolute: false},
	}}, "", true
}

func (p *Parser) parseScale(clause string, b *batch) ([]models.Action, string, bool) {
	if !reScaleVerb.MatchString(clause) {
		return nil, "", false
	}
	id, ok := p.resolveTarget(clause, b)
	if !ok {
		return nil, fmt.Sprintf("could not resolve an object to scale in %q", clause), true
	}

	factor := extractNumber(clause, 1.5)
	switch {
	case containsAny(clause, "shrink", "reduce", "smaller"):
		if factor < 1 {
			factor = 1
		}
		factor = 1 / factor
	case factor < 0.1 || factor > 10:
		if containsAny(clause, "grow", "enlarge") {
			factor = 1.5
		} else {
			factor = 0.5
		}
	}

	return []models.Action{{
		Kind:   models.ActionScaleObject,
		Target: id,
		Params: models.ScaleObjectParams{Factor: factor},
	}}, "", true
}

func (p *Parser) parseColor(clause string, b *batch) ([]models.Action, string, bool) {
	color, ok := extractColor(clause)
	if !ok || !reColorVerb.MatchString(clause) {
		return nil, "", false
	}
	id, ok := p.resolveTarget(clause, b)
	if !ok {
		return nil, fmt.Sprintf("could not resolve an object to color in %q", clause), true
	}
	return []models.Action{{
		Kind:   models.ActionSetColor,
		Target: id,
		Params: models.SetColorParams{Color: color},
	}}, "", true
}

func (p *Parser) parseHighlight(clause string, b *batch) ([]models.Action, string, bool) {
	if !reHighlightVerb.MatchString(clause) {
		return nil, "", false
	}

	color, ok := extractColor(clause)
	if !ok {
		color = defaultHighlightColor
	}

	// "highlight the safety zone near the robot" creates a zone marker
	// rather than flagging an existing object.
	if containsAny(clause, "safety", "zone", "area") {
		position, _ := extractPosition(clause, b.objects)
		id := p.generateID(models.ObjectSafetyZone, b.objects)
		b.objects = append(b.objects, models.SceneObject{
			ID: id, Type: models.ObjectSafetyZone, Name: displayName(models.ObjectSafetyZone),
			Position: position, Visible: true,
		})
		b.recentID = id
		return []models.Action{{
			Kind:   models.ActionAddSafetyZone,
			Target: id,
			Params: models.AddSafetyZoneParams{
				Position: position,
				Color:    color,
				Size:     models.Vector3{X: 5, Y: 0.1, Z: 5},
			},
		}}, "", true
	}

	id, ok := p.resolveTarget(clause, b)
	if !ok {
		return nil, fmt.Sprintf("could not resolve an object to highlight in %q", clause), true
	}
	return []models.Action{{
		Kind:   models.ActionHighlightObject,
		Target: id,
		Params: models.HighlightObjectParams{Color: color, Duration: p.defaults.HighlightDurationMS},
	}}, "", true
}

func (p *Parser) parseCamera(clause string, b *batch) ([]models.Action, string, bool) {
	if !reCameraVerb.MatchString(clause) {
		return nil, "", false
	}

	for _, preset := range cameraPresets {
		if strings.Contains(clause, preset.Phrase) {
			return []models.Action{{Kind: models.ActionCameraFocus, Params: preset.Pose}}, "", true
		}
	}

	if containsWord(clause, "zoom") {
		direction := ""
		switch {
		case containsWord(clause, "in"):
			direction = "in"
		case containsWord(clause, "out"):
			direction = "out"
		}
		if direction != "" {
			amount := p.defaults.ZoomAmount
			return []models.Action{{
				Kind:   models.ActionCameraZoom,
				Params: models.CameraZoomParams{Direction: direction, Amount: amount},
			}}, "", true
		}
	}

	if id, ok := p.resolveTarget(clause, b); ok {
		for _, obj := range b.objects {
			if obj.ID == id {
				return []models.Action{{
					Kind: models.ActionCameraFocus,
					Params: models.CameraPoseParams{
						Position: obj.Position.Add(models.Vector3{X: 8, Y: 6, Z: 8}),
						Target:   obj.Position,
					},
				}}, "", true
			}
		}
	}

	return nil, fmt.Sprintf("could not resolve a camera target in %q", clause), true
}

func (p *Parser) parseVisibility(clause string, b *batch) ([]models.Action, string, bool) {
	visible := false
	switch {
	case reHideVerb.MatchString(clause):
		visible = false
	case reShowVerb.MatchString(clause):
		visible = true
	default:
		return nil, "", false
	}
	id, ok := p.resolveTarget(clause, b)
	if !ok {
		return nil, fmt.Sprintf("could not resolve an object to show or hide in %q", clause), true
	}
	return []models.Action{{
		Kind:   models.ActionSetVisibility,
		Target: id,
		Params: models.SetVisibilityParams{Visible: visible},
	}}, "", true
}

func (p *Parser) parseReset(clause string, b *batch) ([]models.Action, string, bool) {
	if !reResetPhrase.MatchString(clause) {
		return nil, "", false
	}
	return []models.Action{{
		Kind:   models.ActionResetScene,
		Params: models.ResetSceneParams{KeepDefaults: true},
	}}, "", true
}

func (p *Parser) parseAnimate(clause string, b *batch) ([]models.Action, string, bool) {
	animate := false
	switch {
	case reAnimateVerb.MatchString(clause):
		animate = true
	case reStopVerb.MatchString(clause):
		animate = false
	default:
		return nil, "", false
	}
	id, ok := p.resolveTarget(clause, b)
	if !ok {
		return nil, fmt.Sprintf("could not resolve an object to animate in %q", clause), true
	}
	return []models.Action{{
		Kind:   models.ActionAnimateObject,
		Target: id,
		Params: models.AnimateObjectParams{Animate: animate},
	}}, "", true
}

// ---------------------------------------------------------------------------
// extraction helpers
// ---------------------------------------------------------------------------

// resolveTarget resolves against the batch context and records the hit so
// later pronouns keep pointing at it.
func (p *Parser) resolveTarget(clause string, b *batch) (string, bool) {
	id, ok := p.resolver.Resolve(clause, b.objects, b.recentID)
	if ok {
		b.recentID = id
	}
	return id, ok
}

// dropObject removes an object from the batch context after a remove clause
// so later clauses stop resolving to it.
func (b *batch) dropObject(id string) {
	for i := range b.objects {
		if b.objects[i].ID == id {
			b.objects = append(b.objects[:i], b.objects[i+1:]...)
			break
		}
	}
	if b.recentID == id {
		b.recentID = ""
	}
}

// generateID fabricates a collision-free id of the form type_N.
func (p *Parser) generateID(objType models.ObjectType, objects []models.SceneObject) string {
	existing := make(map[string]bool, len(objects))
	for _, obj := range objects {
		existing[obj.ID] = true
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		p.counters[objType]++
		id := fmt.Sprintf("%s_%d", objType, p.counters[objType])
		if !existing[id] {
			return id
		}
	}
}

// displayName turns an object type into its default label, e.g.
// robot_arm -> "Robot Arm".
func displayName(objType models.ObjectType) string {
	words := strings.Split(string(objType), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

var reColorName = regexp.MustCompile(`\b(red|green|blue|yellow|orange|purple|pink|cyan|white|black|gray|grey|silver|gold|brown)\b`)

// extractColor finds a named color or a #rrggbb literal.
func extractColor(text string) (string, bool) {
	if m := reColorName.FindString(text); m != "" {
		return colorTable[m], true
	}
	if m := reHexColor.FindString(text); m != "" {
		return m, true
	}
	return "", false
}

// extractNumber returns the first number in the text, or the default.
func extractNumber(text string, def float64) float64 {
	if m := reNumber.FindString(text); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			return v
		}
	}
	return def
}

// extractDegrees finds an explicit rotation amount.
func extractDegrees(text string) (float64, bool) {
	for _, re := range degreePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

// extractAxis maps axis language to x/y/z; y is the default.
func extractAxis(text string) string {
	switch {
	case containsAny(text, "horizontal", "side to side", "yaw"):
		return "y"
	case containsAny(text, "vertical", "up and down", "pitch"):
		return "x"
	case containsAny(text, "roll", "twist"):
		return "z"
	}
	for _, axis := range []string{"x", "y", "z"} {
		if strings.Contains(text, " "+axis+" ") || strings.HasSuffix(text, " "+axis) ||
			strings.Contains(text, axis+"-axis") || strings.Contains(text, axis+" axis") {
			return axis
		}
	}
	return "y"
}

// extractCoords finds an explicit (x, y, z) coordinate triple.
func extractCoords(text string) (models.Vector3, bool) {
	m := reCoords.FindStringSubmatch(text)
	if m == nil {
		return models.Vector3{}, false
	}
	x, _ := strconv.ParseFloat(m[1], 64)
	y, _ := strconv.ParseFloat(m[2], 64)
	z, _ := strconv.ParseFloat(m[3], 64)
	return models.Vector3{X: x, Y: y, Z: z}, true
}

// extractPosition derives a placement from keywords, explicit coordinates
// or a position relative to a named object, in that order of increasing
// authority.
func extractPosition(text string, objects []models.SceneObject) (models.Vector3, bool) {
	position := models.Vector3{}
	found := false

	if _, offset, ok := earliestPositionKeyword(text); ok {
		position = offset
		found = true
	}

	if coords, ok := extractCoords(text); ok {
		position = coords
		found = true
	}

	// Relative to a named object: offset from its position, with
	// ground-level keywords forcing y to the floor.
	for _, obj := range objects {
		name := strings.ToLower(obj.Name)
		objType := strings.ToLower(string(obj.Type))
		if (name == "" || !strings.Contains(text, name)) && !strings.Contains(text, objType) {
			continue
		}

		base := obj.Position
		if kw, offset, ok := earliestPositionKeyword(text); ok {
			y := base.Y + offset.Y
			if groundLevelKeywords[kw] {
				y = 0
			}
			position = models.Vector3{X: base.X + offset.X, Y: y, Z: base.Z + offset.Z}
		} else {
			position = models.Vector3{X: base.X + 3, Y: 0, Z: base.Z}
		}
		return position, true
	}

	return position, found
}

// earliestPositionKeyword returns the placement phrase occurring first in
// the text.
func earliestPositionKeyword(text string) (string, models.Vector3, bool) {
	bestIdx := -1
	var bestKw string
	var bestOffset models.Vector3

	for i, kw := range positionKeywords {
		loc := positionKeywordRes[i].FindStringIndex(text)
		if loc == nil {
			continue
		}
		if bestIdx < 0 || loc[0] < bestIdx {
			bestIdx = loc[0]
			bestKw = kw.Phrase
			bestOffset = kw.Offset
		}
	}

	return bestKw, bestOffset, bestIdx >= 0
}

// containsWord reports a word-boundary occurrence of w in text.
func containsWord(text, w string) bool {
	re := wordRes[w]
	if re == nil {
		return strings.Contains(text, w)
	}
	return re.MatchString(text)
}

var wordRes = func() map[string]*regexp.Regexp {
	words := []string{"left", "right", "up", "down", "forward", "front", "back", "backward", "zoom", "in", "out"}
	m := make(map[string]*regexp.Regexp, len(words))
	for _, w := range words {
		m[w] = regexp.MustCompile(`\b` + w + `\b`)
	}
	return m
}()

// containsAny reports whether any of the substrings occurs in text.
func containsAny(text string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}
