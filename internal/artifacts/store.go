package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/figbridge/figbridge/internal/logx"
	"github.com/figbridge/figbridge/internal/metrics"
)

var (
	unsafeChars  = regexp.MustCompile(`[^\w\s-]`)
	runsOfDashes = regexp.MustCompile(`[\s-]+`)
)

// SafeName reduces a caller-supplied design name to a filesystem-safe folder
// name: unsafe characters stripped, whitespace and hyphen runs collapsed to
// one hyphen, lowercased. An empty result becomes "untitled".
func SafeName(name string) string {
	s := unsafeChars.ReplaceAllString(name, "")
	s = runsOfDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	s = strings.ToLower(s)
	if s == "" {
		return "untitled"
	}
	return s
}

// Store writes generated design code bundles under a root directory.
type Store struct {
	root string
}

// NewStore builds a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Save writes the non-empty parts of one design bundle as index.html,
// styles.css and script.js under a folder named after the design. It returns
// the folder path and the names of the files written.
func (s *Store) Save(designName, html, css, js string) (string, []string, error) {
	folder := filepath.Join(s.root, SafeName(designName))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", nil, fmt.Errorf("create design folder: %w", err)
	}

	parts := []struct {
		name    string
		content string
	}{
		{"index.html", html},
		{"styles.css", css},
		{"script.js", js},
	}
	var written []string
	for _, p := range parts {
		if p.content == "" {
			continue
		}
		if err := os.WriteFile(filepath.Join(folder, p.name), []byte(p.content), 0o644); err != nil {
			return "", nil, fmt.Errorf("write %s: %w", p.name, err)
		}
		written = append(written, p.name)
	}

	metrics.RecordDesignSaved()
	logx.Log.Info().Str("folder", folder).Strs("files", written).Msg("design code saved")
	return folder, written, nil
}
