//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"hydro-erosion/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

type parameterProvider interface {
	Parameters() core.ParameterSnapshot
}

type statusProvider interface {
	StatusLines() []string
}

// HUD renders the tunables panel and the last tick's telemetry to the right
// of the terrain view.
type HUD struct {
	sim        core.Sim
	width      int
	panel      *ebiten.Image
	lastHeight int
	snapshot   core.ParameterSnapshot
	status     []string

	controls     []hudControlState
	intSetter    core.IntParameterSetter
	floatSetter  core.FloatParameterSetter
	boolSetter   core.BoolParameterSetter
	panelOffsetX int
	title        string

	pixel *ebiten.Image
}

// NewHUD constructs a HUD for the provided simulation and panel width.
func NewHUD(sim core.Sim, width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{sim: sim, width: width}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	h.title = buildTitle(sim)
	if provider, ok := sim.(core.ParameterControlsProvider); ok {
		controls := provider.ParameterControls()
		h.controls = make([]hudControlState, len(controls))
		for i, ctrl := range controls {
			h.controls[i] = hudControlState{control: ctrl, value: "--"}
		}
		h.layoutControls()
	}
	h.intSetter, _ = sim.(core.IntParameterSetter)
	h.floatSetter, _ = sim.(core.FloatParameterSetter)
	h.boolSetter, _ = sim.(core.BoolParameterSetter)
	return h
}

// Width returns the panel width in pixels.
func (h *HUD) Width() int {
	if h == nil {
		return 0
	}
	return h.width
}

// Update refreshes the cached snapshot and handles clicks on the panel.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	if provider, ok := h.sim.(statusProvider); ok {
		h.status = provider.StatusLines()
	}
	provider, ok := h.sim.(parameterProvider)
	if !ok {
		h.snapshot = core.ParameterSnapshot{}
		return
	}
	h.snapshot = provider.Parameters()
	h.refreshControlValues()
	h.handleInput()
}

// Draw paints the HUD panel anchored to the right edge of the terrain view.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int, scale int) {
	if h == nil || h.width <= 0 {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	height := h.sim.Size().H * scale
	if height <= 0 {
		return
	}
	if h.panel == nil || h.lastHeight != height {
		h.panel = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.panel.Fill(color.RGBA{R: 16, G: 18, B: 22, A: 255})
	bottom := h.drawControls()
	h.drawStatus(bottom)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func buildTitle(sim core.Sim) string {
	if sim == nil || sim.Name() == "" {
		return "Controls"
	}
	name := sim.Name()
	return fmt.Sprintf("%s%s", strings.ToUpper(name[:1]), name[1:])
}

func (h *HUD) refreshControlValues() {
	for i := range h.controls {
		state := &h.controls[i]
		param, ok := h.snapshot.Find(state.control.Key)
		state.hasValue = false
		state.value = "--"
		if !ok {
			continue
		}
		switch state.control.Type {
		case core.ParamTypeInt:
			parsed, err := strconv.Atoi(param.Value)
			if err != nil {
				continue
			}
			state.intValue = parsed
			state.value = strconv.Itoa(parsed)
		case core.ParamTypeFloat:
			parsed, err := strconv.ParseFloat(param.Value, 64)
			if err != nil {
				continue
			}
			state.floatValue = parsed
			state.value = formatFloat(state.control, parsed)
		case core.ParamTypeBool:
			parsed, err := strconv.ParseBool(param.Value)
			if err != nil {
				continue
			}
			state.boolValue = parsed
			state.value = "off"
			if parsed {
				state.value = "on"
			}
		default:
			continue
		}
		state.hasValue = true
	}
}

func (h *HUD) handleInput() {
	if len(h.controls) == 0 || !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return
	}
	px := mx - h.panelOffsetX
	for i := range h.controls {
		state := &h.controls[i]
		if !state.hasValue {
			continue
		}
		if pointInRect(px, my, state.minusRect) {
			h.applyAdjustment(state, -1)
			return
		}
		if pointInRect(px, my, state.plusRect) {
			h.applyAdjustment(state, 1)
			return
		}
	}
}

// target returns the value a click in direction would set, and whether it
// differs from the current one.
func (h *HUD) target(state *hudControlState, direction int) (float64, bool) {
	ctrl := state.control
	switch ctrl.Type {
	case core.ParamTypeInt:
		if h.intSetter == nil {
			return 0, false
		}
		step := math.Max(1, math.Round(ctrl.Step))
		v := float64(state.intValue) + float64(direction)*step
		v = clampControl(ctrl, v)
		return v, int(v) != state.intValue
	case core.ParamTypeFloat:
		if h.floatSetter == nil {
			return 0, false
		}
		step := ctrl.Step
		if step <= 0 {
			step = 0.05
		}
		v := clampControl(ctrl, state.floatValue+float64(direction)*step)
		return v, math.Abs(v-state.floatValue) >= 1e-12
	case core.ParamTypeBool:
		if h.boolSetter == nil {
			return 0, false
		}
		if direction > 0 {
			return 1, !state.boolValue
		}
		return 0, state.boolValue
	}
	return 0, false
}

func (h *HUD) applyAdjustment(state *hudControlState, direction int) {
	v, ok := h.target(state, direction)
	if !ok {
		return
	}
	key := state.control.Key
	switch state.control.Type {
	case core.ParamTypeInt:
		if h.intSetter.SetIntParameter(key, int(v)) {
			state.intValue = int(v)
			state.value = strconv.Itoa(int(v))
		}
	case core.ParamTypeFloat:
		if h.floatSetter.SetFloatParameter(key, v) {
			state.floatValue = v
			state.value = formatFloat(state.control, v)
		}
	case core.ParamTypeBool:
		if h.boolSetter.SetBoolParameter(key, v > 0) {
			state.boolValue = v > 0
		}
	}
}

func clampControl(ctrl core.ParameterControl, v float64) float64 {
	if ctrl.HasMin && v < ctrl.Min {
		v = ctrl.Min
	}
	if ctrl.HasMax && v > ctrl.Max {
		v = ctrl.Max
	}
	return v
}

var (
	textColor  = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	mutedColor = color.RGBA{R: 150, G: 150, B: 160, A: 255}
)

// drawControls paints the control rows and returns the y just below them.
func (h *HUD) drawControls() int {
	face := basicfont.Face7x13
	headerY := panelPadding + headerBaseline
	text.Draw(h.panel, h.title, face, panelPadding, headerY, textColor)
	if len(h.controls) == 0 {
		text.Draw(h.panel, "No adjustable parameters", face, panelPadding, headerY+infoSpacing, mutedColor)
		return headerY + infoSpacing
	}
	bottom := controlsTop
	for i := range h.controls {
		state := &h.controls[i]
		labelY := state.top + labelBaseline
		text.Draw(h.panel, state.control.Label, face, panelPadding, labelY, textColor)
		valueColor := textColor
		if !state.hasValue {
			valueColor = mutedColor
		}
		valueWidth := text.BoundString(face, state.value).Dx()
		text.Draw(h.panel, state.value, face, state.minusRect.Min.X-buttonGap-valueWidth, labelY, valueColor)

		_, minusOK := h.target(state, -1)
		_, plusOK := h.target(state, 1)
		h.drawButton(state.minusRect, "-", state.hasValue && minusOK)
		h.drawButton(state.plusRect, "+", state.hasValue && plusOK)
		bottom = state.top + lineHeight
	}
	return bottom
}

func (h *HUD) drawStatus(top int) {
	face := basicfont.Face7x13
	y := top + headerBaseline
	for _, line := range h.status {
		if y > h.lastHeight-panelPadding {
			return
		}
		text.Draw(h.panel, line, face, panelPadding, y, mutedColor)
		y += statusSpacing
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	if h.pixel == nil {
		return
	}
	bg := color.RGBA{R: 54, G: 58, B: 68, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(bg)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) layoutControls() {
	if h.width <= 0 {
		return
	}
	for i := range h.controls {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plusRect := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minusRect := image.Rect(plusRect.Min.X-buttonGap-buttonSize, buttonY, plusRect.Min.X-buttonGap, buttonY+buttonSize)
		h.controls[i].top = top
		h.controls[i].minusRect = minusRect
		h.controls[i].plusRect = plusRect
	}
}

func formatFloat(ctrl core.ParameterControl, value float64) string {
	step := ctrl.Step
	if step <= 0 {
		step = 0.05
	}
	precision := 1
	switch {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}

type hudControlState struct {
	control core.ParameterControl
	value   string

	intValue   int
	floatValue float64
	boolValue  bool
	hasValue   bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

const (
	panelPadding   = 12
	lineHeight     = 32
	buttonSize     = 22
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 21
	infoSpacing    = 36
	statusSpacing  = 16
	controlsTop    = panelPadding + headerBaseline + 14
)
