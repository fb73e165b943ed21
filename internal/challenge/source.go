package challenge

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scvgr/scavd/pkg/errors"
)

// LoadCSV reads challenges from a CSV file. Column order:
// challenge id, difficulty, no_pre_mine, no_pre_mine_hour, latest_submission.
// The first row is treated as a header. Rows with fewer than 5 columns or
// with an empty id, difficulty, or no_pre_mine are skipped. A missing
// latest_submission defaults to a far-future timestamp.
func LoadCSV(path string) ([]Challenge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "load_challenges",
			"failed to open challenge source").
			WithContext("path", path)
	}
	defer f.Close()

	challenges, err := ReadChallenges(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "load_challenges",
			"failed to parse challenge source").
			WithContext("path", path)
	}
	return challenges, nil
}

// ReadChallenges parses challenge records from CSV data.
func ReadChallenges(r io.Reader) ([]Challenge, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // column count varies between exports

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	var challenges []Challenge
	for i, row := range records {
		if i == 0 {
			continue // header
		}
		if len(row) < 5 {
			continue
		}

		c := Challenge{
			ID:               strings.TrimSpace(row[0]),
			Difficulty:       strings.TrimSpace(row[1]),
			NoPreMine:        strings.TrimSpace(row[2]),
			NoPreMineHour:    strings.TrimSpace(row[3]),
			LatestSubmission: strings.TrimSpace(row[4]),
		}
		if c.LatestSubmission == "" {
			c.LatestSubmission = DefaultLatestSubmission
		}
		if !c.Valid() {
			continue
		}
		challenges = append(challenges, c)
	}

	return challenges, nil
}
