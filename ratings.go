package newsthreads

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Ratings maps a publishing site to its authority score.
type Ratings map[string]float64

// Lookup returns the score of site, or 0 when the site is unrated.
func (r Ratings) Lookup(site string) float64 {
	return r[site]
}

// LoadRatings merges authority tables from the given files. Each line holds
// a site and a score separated by whitespace; blank lines and lines starting
// with # are skipped. Later files override earlier ones.
func LoadRatings(paths ...string) (Ratings, error) {
	ratings := make(Ratings)
	for _, path := range paths {
		if err := loadRatingsFile(path, ratings); err != nil {
			return nil, err
		}
	}
	return ratings, nil
}

func loadRatingsFile(path string, ratings Ratings) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open ratings file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return fmt.Errorf("%s:%d: expected \"<site> <score>\", got %q", path, lineNo, line)
		}
		score, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("%s:%d: invalid score: %w", path, lineNo, err)
		}
		ratings[fields[0]] = score
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read ratings file %s: %w", path, err)
	}
	return nil
}
