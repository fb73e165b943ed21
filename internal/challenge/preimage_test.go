package challenge

import (
	"strings"
	"testing"
)

func testChallenge() *Challenge {
	return &Challenge{
		ID:               "chal-1",
		Difficulty:       "ffff0000",
		NoPreMine:        "npm-value",
		NoPreMineHour:    "hour-7",
		LatestSubmission: "2025-10-30T23:59:59Z",
	}
}

func TestPreimage_FieldOrder(t *testing.T) {
	c := testChallenge()

	got := Preimage("00000000deadbeef", "addr1xyz", c)
	want := "00000000deadbeef" + "addr1xyz" + "chal-1" + "ffff0000" +
		"npm-value" + "2025-10-30T23:59:59Z" + "hour-7"

	if got != want {
		t.Errorf("Preimage() = %q, want %q", got, want)
	}
}

func TestPreimage_Deterministic(t *testing.T) {
	c := testChallenge()

	first := Preimage("0123456789abcdef", "addr1xyz", c)
	second := Preimage("0123456789abcdef", "addr1xyz", c)

	if first != second {
		t.Errorf("Expected identical preimages, got %q and %q", first, second)
	}
}

func TestPreimage_EmptyHourField(t *testing.T) {
	c := testChallenge()
	c.NoPreMineHour = ""

	got := Preimage("0123456789abcdef", "addr1xyz", c)
	if !strings.HasSuffix(got, c.LatestSubmission) {
		t.Errorf("Expected preimage to end with latest_submission when hour is empty, got %q", got)
	}
}

func TestOraclePayload_Prefix(t *testing.T) {
	c := testChallenge()

	got := OraclePayload("0123456789abcdef", "addr1xyz", c)
	want := "npm-value|" + Preimage("0123456789abcdef", "addr1xyz", c)

	if got != want {
		t.Errorf("OraclePayload() = %q, want %q", got, want)
	}

	if strings.Count(got, "|") != 1 {
		t.Errorf("Expected exactly one delimiter, got %q", got)
	}
}
