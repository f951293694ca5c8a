package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultWords is used when no word list is configured.
var DefaultWords = []string{
	"airplane", "apple", "banana", "bicycle", "bridge", "butterfly", "cake",
	"camera", "candle", "castle", "cat", "clock", "cloud", "dog", "door",
	"elephant", "eye", "fish", "flower", "guitar", "hammer", "house",
	"ice cream", "key", "ladder", "light bulb", "moon", "mountain",
	"mushroom", "octopus", "pizza", "rainbow", "scissors", "snowman", "sun",
	"table", "tree", "umbrella", "wheel", "windmill",
}

// ReadCsvFile loads a word list. Rows are either "word" or "index,word" as
// produced by recognizer label files.
func ReadCsvFile(filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read input file %s: %w", filePath, err)
	}
	defer f.Close()

	return ReadWords(f)
}

func ReadWords(r io.Reader) ([]string, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to parse word list as CSV: %w", err)
	}

	seen := make(map[string]struct{}, len(records))
	words := make([]string, 0, len(records))
	for _, record := range records {
		var word string
		switch len(record) {
		case 0:
			continue
		case 1:
			word = record[0]
		default:
			word = record[1]
		}

		word = strings.TrimSpace(word)
		if word == "" {
			log.Debug().Strs("record", record).Msg("[ReadWords] skipping invalid record")
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}

	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}
