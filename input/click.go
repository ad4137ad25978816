package input

// ClickState tracks whether a press may still turn into a click.
type ClickState int

const (
	ClickIdle ClickState = iota
	// ClickArmed follows a plain primary press.
	ClickArmed
	// ClickCancelled follows any movement or leaving the surface while armed.
	ClickCancelled
)

func (s ClickState) String() string {
	switch s {
	case ClickIdle:
		return "idle"
	case ClickArmed:
		return "armed"
	case ClickCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Click separates clicks from drags.
//
//	Idle --press(primary, no shift)--> Armed
//	Armed --move | leave--> Cancelled
//	Armed --release(no shift)--> Idle, click reported
//	any --release--> Idle
//	any --press--> Armed or Idle
type Click struct {
	state ClickState
}

func (c *Click) State() ClickState { return c.state }

// Press records a button press. buttons is the set held after the press.
func (c *Click) Press(buttons Buttons, shift bool) {
	if buttons == ButtonPrimary && !shift {
		c.state = ClickArmed
		return
	}
	c.state = ClickIdle
}

// Move records pointer movement.
func (c *Click) Move() {
	if c.state == ClickArmed {
		c.state = ClickCancelled
	}
}

// Leave records the pointer leaving the surface. A release that follows
// outside the surface is never a click.
func (c *Click) Leave() {
	c.Move()
}

// Release records a button release and reports whether it completes a click.
func (c *Click) Release(shift bool) bool {
	click := c.state == ClickArmed && !shift
	c.state = ClickIdle
	return click
}
