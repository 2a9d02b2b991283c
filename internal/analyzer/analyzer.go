package analyzer

import (
	"fmt"
	"regexp"

	"github.com/mcncl/jsontree/internal/models"
	"github.com/mcncl/jsontree/node"
	"github.com/mcncl/jsontree/pointer"
)

// Regex patterns for recognised string formats
var (
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

	// Time format patterns (ordered by specificity - most specific first)
	rfc3339Regex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`) // 2006-01-02T15:04:05Z
	dateOnlyRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)                                              // 2006-01-02
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	urlRegex      = regexp.MustCompile(`^https?://[^\s]+$`)
)

// Analyzer walks a document tree and collects statistics
type Analyzer struct {
	stats models.Stats
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze returns statistics for the tree rooted at root
func (a *Analyzer) Analyze(root *node.Value) (models.Stats, error) {
	if root == nil {
		return models.Stats{}, fmt.Errorf("analyze: %w", node.ErrNilValue)
	}
	a.stats = models.Stats{
		Kinds:         make(map[string]int),
		StringFormats: make(map[string]int),
		DuplicateKeys: []string{},
	}
	if err := a.walk(root, "", 0); err != nil {
		return models.Stats{}, err
	}
	return a.stats, nil
}

func (a *Analyzer) walk(v *node.Value, path string, depth int) error {
	if depth > node.NestingLimit {
		return fmt.Errorf("analyze %s: %w", path, node.ErrNestingTooDeep)
	}
	if depth > a.stats.MaxDepth {
		a.stats.MaxDepth = depth
	}
	a.stats.Values++
	a.stats.Kinds[v.Kind().String()]++

	switch {
	case v.IsString():
		a.stats.TextBytes += len(v.Text())
		if format := classifyString(v.Text()); format != "" {
			a.stats.StringFormats[format]++
		}
	case v.IsArray():
		a.stats.LongestArray = max(a.stats.LongestArray, v.Len())
		for i, item := range v.Items() {
			if err := a.walk(item, fmt.Sprintf("%s/%d", path, i), depth+1); err != nil {
				return err
			}
		}
	case v.IsObject():
		a.stats.LargestObject = max(a.stats.LargestObject, v.Len())
		seen := make(map[string]struct{}, v.Len())
		for key, member := range v.Members() {
			memberPath := path + "/" + pointer.Escape(key)
			if _, dup := seen[key]; dup {
				a.stats.DuplicateKeys = append(a.stats.DuplicateKeys, memberPath)
			}
			seen[key] = struct{}{}
			a.stats.TextBytes += len(key)
			if err := a.walk(member, memberPath, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// classifyString names the format of s, or returns "" when none matches
func classifyString(s string) string {
	switch {
	case uuidRegex.MatchString(s):
		return "uuid"
	case rfc3339Regex.MatchString(s):
		return "date-time"
	case dateOnlyRegex.MatchString(s):
		return "date"
	case emailRegex.MatchString(s):
		return "email"
	case urlRegex.MatchString(s):
		return "uri"
	}
	return ""
}
