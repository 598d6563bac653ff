package term

// csiParams splits the collected parameter bytes on ';'. Missing or empty
// positions yield def; intermediate bytes and other non-digits are skipped.
func csiParams(buf []byte, def int) []int {
	params := []int{}
	cur, has := 0, false
	flush := func() {
		if has {
			params = append(params, cur)
		} else {
			params = append(params, def)
		}
		cur, has = 0, false
	}
	for _, b := range buf {
		switch {
		case b >= '0' && b <= '9':
			if cur < 1<<16 {
				cur = cur*10 + int(b-'0')
			}
			has = true
		case b == ';':
			flush()
		}
	}
	flush()
	return params
}

func param(params []int, i, def int) int {
	if i >= len(params) {
		return def
	}
	return params[i]
}

func (g *Grid) dispatchCSI(buf []byte, final byte) {
	private := len(buf) > 0 && buf[0] == '?'
	if private {
		g.dispatchPrivate(buf[1:], final)
		return
	}

	switch final {
	case 'A':
		n := max1(param(csiParams(buf, 1), 0, 1))
		g.cursor.Row = clamp(g.cursor.Row-n, g.top, g.rows-1)
	case 'B':
		n := max1(param(csiParams(buf, 1), 0, 1))
		g.cursor.Row = clamp(g.cursor.Row+n, 0, g.bottom)
	case 'C':
		n := max1(param(csiParams(buf, 1), 0, 1))
		g.cursor.Col = clamp(g.cursor.Col+n, 0, g.cols-1)
	case 'D':
		n := max1(param(csiParams(buf, 1), 0, 1))
		g.cursor.Col = clamp(g.cursor.Col-n, 0, g.cols)
	case 'H', 'f':
		p := csiParams(buf, 1)
		g.cursor.Row = clamp(max1(param(p, 0, 1))-1, 0, g.rows-1)
		g.cursor.Col = clamp(max1(param(p, 1, 1))-1, 0, g.cols-1)
	case 'J':
		g.eraseDisplay(param(csiParams(buf, 0), 0, 0))
	case 'K':
		g.eraseLine(param(csiParams(buf, 0), 0, 0))
	case 'm':
		g.applySGR(csiParams(buf, 0))
	case 'r':
		p := csiParams(buf, 0)
		top := max1(param(p, 0, 1)) - 1
		bottom := param(p, 1, g.rows)
		if bottom <= 0 {
			bottom = g.rows
		}
		bottom--
		top = clamp(top, 0, g.rows-1)
		bottom = clamp(bottom, 0, g.rows-1)
		if top < bottom {
			g.top, g.bottom = top, bottom
			g.cursor.Row, g.cursor.Col = 0, 0
		}
	case 'S':
		g.scrollUp(max1(param(csiParams(buf, 1), 0, 1)))
	case 'T':
		g.scrollDown(max1(param(csiParams(buf, 1), 0, 1)))
	default:
		// unknown finals are consumed and ignored
	}
}

func (g *Grid) dispatchPrivate(buf []byte, final byte) {
	if string(buf) != "25" {
		return
	}
	switch final {
	case 'h':
		g.cursor.Visible = true
	case 'l':
		g.cursor.Visible = false
	}
}

func (g *Grid) eraseDisplay(mode int) {
	row, col := g.cursor.Row, clamp(g.cursor.Col, 0, g.cols-1)
	switch mode {
	case 0: // cursor to end of screen
		g.clearLineRange(row, col, g.cols-1)
		for r := row + 1; r < g.rows; r++ {
			g.cells[r] = blankRow(g)
		}
	case 1: // start of screen to cursor
		for r := 0; r < row; r++ {
			g.cells[r] = blankRow(g)
		}
		g.clearLineRange(row, 0, col)
	case 2:
		for r := range g.cells {
			g.cells[r] = blankRow(g)
		}
	}
}

func (g *Grid) eraseLine(mode int) {
	row, col := g.cursor.Row, clamp(g.cursor.Col, 0, g.cols-1)
	switch mode {
	case 0:
		g.clearLineRange(row, col, g.cols-1)
	case 1:
		g.clearLineRange(row, 0, col)
	case 2:
		g.clearLineRange(row, 0, g.cols-1)
	}
}

func (g *Grid) clearLineRange(row, from, to int) {
	for c := from; c <= to; c++ {
		g.cells[row][c] = g.blankCell()
	}
}

func (g *Grid) applySGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			g.attrs = Attrs{FG: ColorDefaultFG, BG: ColorDefaultBG}
		case p == 1:
			g.attrs.Style |= StyleBold
		case p == 3:
			g.attrs.Style |= StyleItalic
		case p == 4:
			g.attrs.Style |= StyleUnderline
		case p == 7:
			g.attrs.Style |= StyleInverse
		case p == 22:
			g.attrs.Style &^= StyleBold
		case p == 23:
			g.attrs.Style &^= StyleItalic
		case p == 24:
			g.attrs.Style &^= StyleUnderline
		case p == 27:
			g.attrs.Style &^= StyleInverse
		case p >= 30 && p <= 37:
			g.attrs.FG = g.palette[p-30]
		case p >= 90 && p <= 97:
			g.attrs.FG = g.palette[p-90+8]
		case p >= 40 && p <= 47:
			g.attrs.BG = g.palette[p-40]
		case p >= 100 && p <= 107:
			g.attrs.BG = g.palette[p-100+8]
		case p == 38 || p == 48:
			color, consumed := g.extendedColor(params[i+1:])
			if consumed == 0 {
				return
			}
			if p == 38 {
				g.attrs.FG = color
			} else {
				g.attrs.BG = color
			}
			i += consumed
		case p == 39:
			g.attrs.FG = ColorDefaultFG
		case p == 49:
			g.attrs.BG = ColorDefaultBG
		default:
			// unknown SGR codes are ignored
		}
	}
}

// extendedColor parses the tail of a 38/48 SGR: "5;n" or "2;r;g;b".
// Returns the parsed color and how many parameters were consumed, or 0 when
// the tail is malformed.
func (g *Grid) extendedColor(tail []int) (Color, int) {
	if len(tail) == 0 {
		return 0, 0
	}
	switch tail[0] {
	case 5:
		if len(tail) < 2 {
			return 0, 0
		}
		return g.indexed(tail[1]), 2
	case 2:
		if len(tail) < 4 {
			return 0, 0
		}
		return RGB(clampByte(tail[1]), clampByte(tail[2]), clampByte(tail[3])), 4
	}
	return 0, 0
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
