package client

import (
	"strconv"
	"strings"

	"github.com/charbxl/nine999/nine999-backend/models"
)

const (
	gameTag     = "9999"
	glyphFilled = "🟩"
	glyphEmpty  = "⬛"
)

// GenerateShareText renders the spoiler-free result card: one glyph row per
// own attempt, filled glyphs for matched positions. The winning guess is not
// part of the attempt log (game_over is its result), so a winner gets one
// extra fully-filled row and the attempt count is own attempts plus one; a
// player who did not win shows the X sentinel. Deterministic in its inputs,
// byte for byte.
func GenerateShareText(guesses []models.Attempt, userID string, didWin bool) string {
	rows := []string{}
	for _, g := range guesses {
		if g.UserID != userID {
			continue
		}
		rows = append(rows, strings.Repeat(glyphFilled, g.Match)+strings.Repeat(glyphEmpty, 4-g.Match))
	}

	attempts := "X"
	if didWin {
		attempts = strconv.Itoa(len(rows) + 1)
		rows = append(rows, strings.Repeat(glyphFilled, 4))
	}

	lines := append([]string{gameTag + " — " + attempts + "/∞", ""}, rows...)
	return strings.Join(lines, "\n")
}
