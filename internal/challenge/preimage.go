package challenge

import "strings"

// Preimage assembles the string hashed by the oracle. The field order is a
// wire contract shared with the remote service and must not change:
// nonce, address, challenge_id, difficulty, no_pre_mine, latest_submission,
// no_pre_mine_hour, concatenated with no separators.
func Preimage(nonceHex, address string, c *Challenge) string {
	var b strings.Builder
	b.Grow(len(nonceHex) + len(address) + len(c.ID) + len(c.Difficulty) +
		len(c.NoPreMine) + len(c.LatestSubmission) + len(c.NoPreMineHour))
	b.WriteString(nonceHex)
	b.WriteString(address)
	b.WriteString(c.ID)
	b.WriteString(c.Difficulty)
	b.WriteString(c.NoPreMine)
	b.WriteString(c.LatestSubmission)
	b.WriteString(c.NoPreMineHour)
	return b.String()
}

// OraclePayload builds the line sent to the hash oracle daemon: the
// challenge's no_pre_mine value, a '|' delimiter, then the preimage. The
// prefix lets the daemon key and reuse its expensive ROM initialization per
// no_pre_mine value without a separate initialization call. This is a
// documented wire contract with the daemon, nothing more.
func OraclePayload(nonceHex, address string, c *Challenge) string {
	return c.NoPreMine + "|" + Preimage(nonceHex, address, c)
}
