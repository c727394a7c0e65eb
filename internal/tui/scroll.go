package tui

// scrollWindow is the visible slice of the field list.
type scrollWindow struct {
	top    int
	height int // 0 shows everything
}

// reveal scrolls the least amount that puts line on screen and reports
// whether the window moved. Lines already visible leave it untouched.
func (w *scrollWindow) reveal(line int) bool {
	if w.height <= 0 {
		return false
	}
	switch {
	case line < w.top:
		w.top = line
	case line >= w.top+w.height:
		w.top = line - w.height + 1
	default:
		return false
	}
	return true
}

func (w scrollWindow) slice(lines []string) []string {
	if w.height <= 0 || len(lines) <= w.height {
		return lines
	}
	top := w.top
	if top > len(lines)-w.height {
		top = len(lines) - w.height
	}
	if top < 0 {
		top = 0
	}
	return lines[top : top+w.height]
}
