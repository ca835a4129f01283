package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Section is one numbered section of a law as it appears in the corpus files.
type Section struct {
	Number   string `json:"section_number"`
	Headline string `json:"headline"`
	Text     string `json:"text"`
}

// Law is one act of legislation loaded from a corpus file.
type Law struct {
	LawID    int       `json:"law_id"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// LoadLawFile reads a single law from the given JSON file.
func LoadLawFile(path string) (*Law, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading law file %s: %w", path, err)
	}

	var law Law
	if err := json.Unmarshal(data, &law); err != nil {
		return nil, fmt.Errorf("parsing law file %s: %w", path, err)
	}
	return &law, nil
}

// LoadCorpusDir reads every .json file in the directory as a law.
// Files are loaded in lexical order.
func LoadCorpusDir(dir string) ([]*Law, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory %s: %w", dir, err)
	}

	laws := make([]*Law, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		law, err := LoadLawFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		laws = append(laws, law)
	}
	return laws, nil
}
