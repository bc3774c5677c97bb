package game

import "regexp"

var codePattern = regexp.MustCompile(`^\d{4}$`)

// IsValidCode reports whether s is exactly four decimal digits, the shape
// required of both secrets and guesses.
func IsValidCode(s string) bool {
	return codePattern.MatchString(s)
}

// Score counts the positions where guess equals secret. Both inputs are
// validated four-digit strings, so byte comparison is safe. There is no
// present-elsewhere pass: the protocol reports a single integer and a game
// is won exactly when all four positions match.
func Score(secret, guess string) int {
	n := 0
	for i := 0; i < len(secret) && i < len(guess); i++ {
		if secret[i] == guess[i] {
			n++
		}
	}
	return n
}
