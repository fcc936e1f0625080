package history

// Cursor tracks backward pagination of the open room.
//
// Page is the last page successfully loaded (1 after the initial load). A
// cursor that is Exhausted never starts another fetch until Reset.
type Cursor struct {
	Page      int
	Size      int
	Exhausted bool
	inFlight  int // page being fetched, 0 when idle
}

// NewCursor creates a cursor for the first page.
func NewCursor(size int) Cursor {
	if size <= 0 {
		size = DefaultPageSize
	}
	return Cursor{Page: 1, Size: size}
}

// Reset returns the cursor to {Page: 1, Exhausted: false}.
func (c *Cursor) Reset() {
	*c = NewCursor(c.Size)
}

// Loading reports whether a fetch is in flight.
func (c *Cursor) Loading() bool { return c.inFlight != 0 }

// BeginInitial marks the first page as in flight.
func (c *Cursor) BeginInitial() int {
	c.inFlight = 1
	return 1
}

// BeginOlder reserves the next older page. It returns false when the room is
// exhausted or a fetch is already running.
func (c *Cursor) BeginOlder() (int, bool) {
	if c.Exhausted || c.inFlight != 0 {
		return 0, false
	}
	c.inFlight = c.Page + 1
	return c.inFlight, true
}

// Complete records a successful fetch of page.
func (c *Cursor) Complete(p Page) {
	if p.Number != c.inFlight {
		return
	}
	c.inFlight = 0
	c.Page = p.Number
	if p.Exhausted {
		c.Exhausted = true
	}
}

// Fail releases the in-flight page without advancing or exhausting.
func (c *Cursor) Fail() {
	c.inFlight = 0
}
