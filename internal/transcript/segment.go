package transcript

// Segment is a maximal run of consecutive content lines. It has no
// identity beyond its position in the transcript.
type Segment struct {
	Page      int
	StartLine int
	Lines     []string
}

// Text joins the segment's lines with single spaces.
func (s Segment) Text() string {
	switch len(s.Lines) {
	case 0:
		return ""
	case 1:
		return s.Lines[0]
	}
	n := 0
	for _, l := range s.Lines {
		n += len(l) + 1
	}
	b := make([]byte, 0, n)
	for i, l := range s.Lines {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, l...)
	}
	return string(b)
}

// SegmentLines groups cleaned lines into segments. A gap in line numbers
// (a dropped non-content line) closes the current segment; zero-length
// segments are discarded.
func SegmentLines(lines []Line) []Segment {
	var segs []Segment
	var cur *Segment
	prevNum := -1
	for _, ln := range lines {
		if cur == nil || ln.Num != prevNum+1 || ln.Page != cur.Page {
			segs = append(segs, Segment{})
			cur = &segs[len(segs)-1]
			cur.Page = ln.Page
			cur.StartLine = ln.Num
		}
		cur.Lines = append(cur.Lines, ln.Text)
		prevNum = ln.Num
	}
	out := segs[:0]
	for _, s := range segs {
		if len(s.Lines) > 0 {
			out = append(out, s)
		}
	}
	return out
}
