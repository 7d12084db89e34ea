package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"path"
	"strings"

	"auction-chat/errors"
)

//go:embed censored/*.txt
var censoredFS embed.FS

// CensoredData carries the parsed word list plus the language codes of
// the dictionaries it came from, for logging.
type CensoredData struct {
	Words     []string
	Languages []string
}

// LoadEmbedded parses the embedded per-language dictionaries (one word
// per line, '#' comments) into a unique word list.
func LoadEmbedded() (*CensoredData, error) {
	entries, err := fs.ReadDir(censoredFS, "censored")
	if err != nil {
		return nil, err
	}

	var languages []string
	uniqueWords := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := censoredFS.ReadFile(path.Join("censored", entry.Name()))
		if err != nil {
			return nil, err
		}
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			word := strings.TrimSpace(scanner.Text())
			if word == "" || strings.HasPrefix(word, "#") {
				continue
			}
			uniqueWords[strings.ToLower(word)] = struct{}{}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(uniqueWords) == 0 {
		return nil, errors.ErrEmptyWords
	}

	words := make([]string, 0, len(uniqueWords))
	for word := range uniqueWords {
		words = append(words, word)
	}
	return &CensoredData{Words: words, Languages: languages}, nil
}
