package challenge

import "strconv"

// MeetsDifficulty reports whether a hex-encoded hash satisfies a hex-encoded
// 32-bit difficulty mask. The first 4 bytes (8 hex characters) of the hash
// are interpreted as an unsigned 32-bit integer; the hash meets the
// difficulty iff every bit that is zero in the mask is also zero there:
//
//	left4 & ^mask == 0
//
// Malformed input (short hash, non-hex hash or mask) never meets any
// difficulty and never panics.
func MeetsDifficulty(hashHex, difficultyHex string) bool {
	if len(hashHex) < 8 {
		return false
	}

	left4, err := strconv.ParseUint(hashHex[:8], 16, 32)
	if err != nil {
		return false
	}

	mask, err := strconv.ParseUint(difficultyHex, 16, 32)
	if err != nil {
		return false
	}

	return uint32(left4)&^uint32(mask) == 0
}
