package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"path"
	"strings"
)

//go:embed censored/*.txt
var censoredFS embed.FS

// Wordlists is the merged content of the embedded censored files.
type Wordlists struct {
	Words     []string
	Languages []string
}

// LoadWordlists reads every embedded wordlist; one file per language,
// one word per line, '#' starts a comment.
func LoadWordlists() (Wordlists, error) {
	entries, err := censoredFS.ReadDir("censored")
	if err != nil {
		return Wordlists{}, fmt.Errorf("read censored dir: %w", err)
	}

	var lists Wordlists
	seen := make(map[string]struct{})
	for _, entry := range entries {
		data, err := censoredFS.ReadFile(path.Join("censored", entry.Name()))
		if err != nil {
			return Wordlists{}, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		lists.Languages = append(lists.Languages, strings.TrimSuffix(entry.Name(), ".txt"))

		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			word := strings.TrimSpace(scanner.Text())
			if word == "" || strings.HasPrefix(word, "#") {
				continue
			}
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			lists.Words = append(lists.Words, word)
		}
		if err := scanner.Err(); err != nil {
			return Wordlists{}, err
		}
	}
	return lists, nil
}
