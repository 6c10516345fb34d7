package cfeparser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// cfeOpenRe finds the opening tag of the CFE element, with or without a
// namespace prefix.
var cfeOpenRe = regexp.MustCompile(`<((?:[a-zA-Z0-9]+:)?CFE)(\s[^>]*)?>`)

// CleanDocument normalizes a raw CFE download so it parses as a single XML
// document. The downloads come in two shapes: an enveloped CFE with an
// Adenda sibling, where only the CFE element is kept, and a bare fragment
// that needs a wrapping root.
func CleanDocument(raw []byte) []byte {
	content := strings.TrimSpace(string(raw))
	content = strings.ReplaceAll(content, "\uFEFF", "")

	if strings.Contains(content, "<Adenda>") {
		if extracted, ok := extractCFERegion(content); ok {
			return []byte(extracted)
		}
		return []byte(content)
	}

	return []byte("<FacturaCompleta>\n" + content + "\n</FacturaCompleta>")
}

// extractCFERegion slices out the CFE element, including its closing tag.
func extractCFERegion(content string) (string, bool) {
	loc := cfeOpenRe.FindStringSubmatchIndex(content)
	if loc == nil {
		return "", false
	}
	tagName := content[loc[2]:loc[3]]
	closing := "</" + tagName + ">"

	rest := content[loc[0]:]
	end := strings.Index(rest, closing)
	if end < 0 {
		return "", false
	}
	return rest[:end+len(closing)], true
}

// CleanFile rewrites one XML file in place with its cleaned content.
func CleanFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	cleaned := CleanDocument(raw)
	if err := os.WriteFile(path, cleaned, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// CleanDir cleans every .xml file in dir. It returns the number of files
// cleaned and stops at the first write failure.
func CleanDir(dir string) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return 0, fmt.Errorf("listing %s: %w", dir, err)
	}
	for i, file := range files {
		if err := CleanFile(file); err != nil {
			return i, err
		}
	}
	return len(files), nil
}
