package frame

// History retains the current frame of a tick and a value copy of the frame
// seen on the previous tick.
type History struct {
	current  *Frame
	previous *Frame
	buf      *Frame
}

// Set installs the frame of the running tick. When the dimensions differ from
// the retained previous frame, the previous generation is discarded so both
// generations always share the same size.
func (h *History) Set(f *Frame) {
	h.current = f
	if h.previous != nil && !h.previous.SameSize(f) {
		h.previous = nil
		h.buf = nil
	}
}

// Current returns the frame of the running tick.
func (h *History) Current() *Frame {
	return h.current
}

// Previous returns the frame of the previous tick or nil on the first tick.
func (h *History) Previous() *Frame {
	return h.previous
}

// Advance copies the current frame into the previous slot. It must run once
// per tick after every consumer has read both generations.
func (h *History) Advance() {
	if !h.current.Valid() {
		return
	}
	if h.buf == nil || !h.buf.SameSize(h.current) {
		h.buf = New(h.current.Width, h.current.Height)
	}
	copy(h.buf.Pix, h.current.Pix)
	h.previous = h.buf
	h.current = nil
}

// Reset drops both generations.
func (h *History) Reset() {
	h.current, h.previous, h.buf = nil, nil, nil
}
