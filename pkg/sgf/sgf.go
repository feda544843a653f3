// Package sgf writes finished matches in Smart Game Format so they can be
// opened by common board viewers.
package sgf

import (
	"fmt"
	"strings"
)

type Color byte

const (
	Black Color = 'B'
	White Color = 'W'
)

// Move uses board coordinates with (0, 0) in the lower-left corner.
type Move struct {
	Color Color
	X     int
	Y     int
}

type Game struct {
	Size      int
	BlackName string
	WhiteName string
	Result    string
	Date      string
	Comment   string
	Moves     []Move
}

// Result formats the RE property, e.g. "B+R" for a black win by
// resignation. An empty winner yields "?".
func Result(winner Color, reason string) string {
	if winner != Black && winner != White {
		return "?"
	}
	return string(winner) + "+" + reason
}

func coord(size, x, y int) (string, error) {
	if x < 0 || y < 0 || x >= size || y >= size || size > 52 {
		return "", fmt.Errorf("move (%d, %d) outside %dx%d board", x, y, size, size)
	}
	return string([]byte{letter(x), letter(size - 1 - y)}), nil
}

func letter(i int) byte {
	if i < 26 {
		return byte('a' + i)
	}
	return byte('A' + i - 26)
}

var escaper = strings.NewReplacer(`\`, `\\`, `]`, `\]`)

func (g Game) String() string {
	s, err := g.Encode()
	if err != nil {
		return ""
	}
	return s
}

// Encode renders the game tree as a single main line.
func (g Game) Encode() (string, error) {
	var sb strings.Builder
	sb.WriteString("(;FF[4]GM[1]")
	fmt.Fprintf(&sb, "SZ[%d]", g.Size)
	prop := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "%s[%s]", name, escaper.Replace(value))
		}
	}
	prop("PB", g.BlackName)
	prop("PW", g.WhiteName)
	prop("DT", g.Date)
	prop("RE", g.Result)
	prop("C", g.Comment)
	for _, m := range g.Moves {
		c, err := coord(g.Size, m.X, m.Y)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, ";%c[%s]", m.Color, c)
	}
	sb.WriteString(")")
	return sb.String(), nil
}
