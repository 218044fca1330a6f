package apples

import "strings"

// Heart glyphs for the lives indicator.
const (
	HeartFull  = '♥'
	HeartEmpty = '♡'
)

// Hearts renders one glyph per life slot: filled for remaining lives,
// empty for lost ones. Lives outside [0, slots] are clamped.
func Hearts(lives, slots int) string {
	if slots < 0 {
		slots = 0
	}
	lives = max(0, min(lives, slots))

	var sb strings.Builder
	for i := 0; i < slots; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if i < lives {
			sb.WriteRune(HeartFull)
		} else {
			sb.WriteRune(HeartEmpty)
		}
	}
	return sb.String()
}
