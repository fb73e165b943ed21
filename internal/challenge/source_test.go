package challenge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadChallenges(t *testing.T) {
	csvData := strings.Join([]string{
		"challengeId,difficulty,noPreMine,noPreMineHour,latest_submission",
		"c1,ffff0000,npm1,h1,2025-10-30T23:59:59Z",
		"c2,ffffffff,npm2,,",
		",ffff0000,npm3,h3,2025-10-30T23:59:59Z",
		"c4,,npm4,h4,2025-10-30T23:59:59Z",
		"c5,ffff0000,,h5,2025-10-30T23:59:59Z",
		"c6,ffff0000,npm6",
	}, "\n")

	challenges, err := ReadChallenges(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ReadChallenges() error = %v", err)
	}

	if len(challenges) != 2 {
		t.Fatalf("Expected 2 challenges, got %d", len(challenges))
	}

	if challenges[0].ID != "c1" {
		t.Errorf("Expected first challenge c1, got %s", challenges[0].ID)
	}

	if challenges[1].ID != "c2" {
		t.Errorf("Expected second challenge c2, got %s", challenges[1].ID)
	}

	// Row c2 has an empty deadline column and gets the far-future default.
	if challenges[1].LatestSubmission != DefaultLatestSubmission {
		t.Errorf("Expected default latest_submission, got %s", challenges[1].LatestSubmission)
	}
}

func TestReadChallenges_TrimsWhitespace(t *testing.T) {
	csvData := "header,h,h,h,h\n c1 , ffff0000 , npm1 , h1 , 2025-10-30T23:59:59Z \n"

	challenges, err := ReadChallenges(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ReadChallenges() error = %v", err)
	}

	if len(challenges) != 1 {
		t.Fatalf("Expected 1 challenge, got %d", len(challenges))
	}

	c := challenges[0]
	if c.ID != "c1" || c.Difficulty != "ffff0000" || c.NoPreMine != "npm1" {
		t.Errorf("Expected trimmed fields, got %+v", c)
	}
}

func TestReadChallenges_HeaderOnly(t *testing.T) {
	challenges, err := ReadChallenges(strings.NewReader("challengeId,difficulty,noPreMine,noPreMineHour,latest_submission\n"))
	if err != nil {
		t.Fatalf("ReadChallenges() error = %v", err)
	}

	if len(challenges) != 0 {
		t.Errorf("Expected no challenges, got %d", len(challenges))
	}
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "challenges.csv")

	data := "challengeId,difficulty,noPreMine,noPreMineHour,latest_submission\n" +
		"c1,ffff0000,npm1,h1,2025-10-30T23:59:59Z\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	challenges, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}

	if len(challenges) != 1 {
		t.Errorf("Expected 1 challenge, got %d", len(challenges))
	}
}

func TestLoadCSV_MissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("Expected error for missing file")
	}
}
