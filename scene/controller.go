package scene

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// The input captured for a single frame. Movement axes are expected to be in
// the [0, 1] range; mouse deltas are expressed in pixels.
type InputState struct {
	Forward  float32 `json:"forward,omitempty"`
	Backward float32 `json:"backward,omitempty"`
	Left     float32 `json:"left,omitempty"`
	Right    float32 `json:"right,omitempty"`
	Up       float32 `json:"up,omitempty"`
	Down     float32 `json:"down,omitempty"`

	// Multiply movement speed while set.
	Boost bool `json:"boost,omitempty"`

	MouseDX float32 `json:"mouse_dx,omitempty"`
	MouseDY float32 `json:"mouse_dy,omitempty"`

	// Mouse look is only applied while the cursor is locked.
	CursorLocked bool `json:"cursor_locked,omitempty"`

	// Elapsed time since the previous frame in seconds.
	DeltaTime float32 `json:"dt"`
}

// A free-fly camera controller. The controller is stateless; everything it
// needs is passed in through InputState.
type FlyController struct {
	// Units per second.
	MoveSpeed float32

	// Speed multiplier applied while boosting.
	BoostMultiplier float32

	// Degrees of rotation per pixel of mouse movement.
	LookSensitivity float32
}

func NewFlyController() *FlyController {
	return &FlyController{
		MoveSpeed:       10,
		BoostMultiplier: 3,
		LookSensitivity: 0.25,
	}
}

// Apply input to the camera. Returns true if the camera pose was modified.
func (fc *FlyController) Update(cam *Camera, in InputState) bool {
	changed := false

	if in.CursorLocked && (in.MouseDX != 0 || in.MouseDY != 0) {
		// Moving the mouse right/down turns the camera right/down.
		cam.Rotate(-in.MouseDX*fc.LookSensitivity, -in.MouseDY*fc.LookSensitivity)
		changed = true
	}

	speed := fc.MoveSpeed * in.DeltaTime
	if in.Boost {
		speed *= fc.BoostMultiplier
	}
	if speed == 0 {
		return changed
	}

	axes := [...]struct {
		dir    CameraDirection
		amount float32
	}{
		{Forward, in.Forward},
		{Backward, in.Backward},
		{Left, in.Left},
		{Right, in.Right},
		{Up, in.Up},
		{Down, in.Down},
	}
	for _, axis := range axes {
		if axis.amount == 0 {
			continue
		}
		cam.Move(axis.dir, axis.amount*speed)
		changed = true
	}

	return changed
}

// Parse a JSON-lines input script. Blank lines and lines starting with '#'
// are ignored.
func ReadInputScript(r io.Reader) ([]InputState, error) {
	var script []InputState

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		var in InputState
		if err := json.Unmarshal(line, &in); err != nil {
			return nil, fmt.Errorf("scene: input script line %d: %w", lineNum, err)
		}
		script = append(script, in)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scene: could not read input script: %w", err)
	}

	return script, nil
}
