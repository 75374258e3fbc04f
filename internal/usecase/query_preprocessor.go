package usecase

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Compiled regex patterns for query normalization
var (
	multiSpacePattern    = regexp.MustCompile(`\s+`)
	trailingPunctPattern = regexp.MustCompile(`[\s.,!?;:]+$`)
	leadingPunctPattern  = regexp.MustCompile(`^[\s.,!?;:\-]+`)
	apostropheReplacer   = strings.NewReplacer("’", "'", "‘", "'")
)

// fillerPhrases are conversational openers stripped from the front of a query.
// Sorted longest first in init so "i am looking for a" wins over "i am a".
var fillerPhrases = []string{
	"i am looking for a", "i am looking for an", "i am looking for",
	"i'm looking for a", "i'm looking for an", "i'm looking for",
	"we are looking for a", "we are looking for", "we're looking for a", "we're looking for",
	"looking for a", "looking for an", "looking for",
	"searching for a", "searching for",
	"i am a", "i am an", "i'm a", "i'm an",
	"we are a", "we are an", "we're a", "we're an",
	"i need a", "i need an", "i need",
	"we need a", "we need an", "we need",
	"i want a", "i want an", "i want",
	"i would like a", "i would like", "i'd like a", "i'd like",
	"i have a", "i have an", "i own a", "i own an",
	"i run a", "i run an", "we run a", "we run an",
	"my business is a", "my business is an",
	"something for a", "something for my", "something for",
	"show me a", "show me",
	"hi", "hello", "hey",
}

func init() {
	sort.SliceStable(fillerPhrases, func(i, j int) bool {
		return len(fillerPhrases[i]) > len(fillerPhrases[j])
	})
}

// QueryPreprocessor normalizes free-text merchant descriptions
type QueryPreprocessor struct {
	logger *zap.Logger
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(logger *zap.Logger) *QueryPreprocessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryPreprocessor{logger: logger}
}

// Normalize lower-cases the query and strips leading filler phrases
func (p *QueryPreprocessor) Normalize(raw string) string {
	normalized := NormalizeQuery(raw)
	p.logger.Debug("normalized query", zap.String("raw", raw), zap.String("normalized", normalized))
	return normalized
}

// NormalizeQuery lower-cases, trims and collapses whitespace, then repeatedly
// removes edge punctuation and conversational filler from the front
// ("i need a", "looking for", ...). A bare greeting normalizes to "".
func NormalizeQuery(raw string) string {
	s := strings.ToLower(apostropheReplacer.Replace(raw))
	s = multiSpacePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	for {
		s = leadingPunctPattern.ReplaceAllString(s, "")
		s = trailingPunctPattern.ReplaceAllString(s, "")
		stripped := stripFiller(s)
		if stripped == s {
			break
		}
		s = stripped
	}

	return s
}

// stripFiller removes the first filler phrase that prefixes s on a word boundary
func stripFiller(s string) string {
	for _, phrase := range fillerPhrases {
		if s == phrase {
			return ""
		}
		if strings.HasPrefix(s, phrase) {
			rest := s[len(phrase):]
			if rest[0] == ' ' || rest[0] == ',' {
				return strings.TrimSpace(rest)
			}
		}
	}
	return s
}
