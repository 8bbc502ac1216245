package pow

import "strings"

// AdjustDifficulty scales the base difficulty by username length so that
// short names cost more work than long ones:
//
//	half     = base / 2
//	divisor  = max(1, usernameLength / half)
//	adjusted = base / divisor
//
// All divisions are integer divisions. When base < 2, half is zero and the
// adjustment is skipped: the base difficulty is returned unchanged.
func AdjustDifficulty(usernameLength, base uint) uint {
	half := base / 2
	if half == 0 {
		return base
	}
	divisor := usernameLength / half
	if divisor < 1 {
		divisor = 1
	}
	return base / divisor
}

// Target is the run of zero hex digits a digest must start with.
func Target(difficulty uint) string {
	return strings.Repeat("0", int(difficulty))
}

// MeetsDifficulty reports whether digest starts with difficulty '0'
// characters. A difficulty longer than the digest never matches.
func MeetsDifficulty(digest string, difficulty uint) bool {
	if difficulty > uint(len(digest)) {
		return false
	}
	for i := uint(0); i < difficulty; i++ {
		if digest[i] != '0' {
			return false
		}
	}
	return true
}
