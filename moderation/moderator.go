// Package moderation masks forbidden words in chat messages before they are
// stored or shown to the partner.
package moderation

import (
	"bufio"
	"chat-collect/errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// Moderator matches a word list against normalized message bodies.
// Matching ignores case, punctuation, spacing and common leet substitutions,
// but replacement happens on the original runes so the layout of the message
// is preserved.
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
	log         *slog.Logger
}

// span links a normalized rune back to its index in the original message.
type span struct {
	normalized []rune
	origin     []int
}

func NewModerator(words []string, replacement rune, log *slog.Logger) (*Moderator, error) {
	unique := lo.Uniq(lo.FilterMap(words, func(word string, _ int) (string, bool) {
		p := string(normalizeRunes([]rune(word)))
		return p, p != ""
	}))
	if len(unique) == 0 {
		return nil, errors.ErrEmptyWords
	}
	patterns := lo.Map(unique, func(p string, _ int) []rune { return []rune(p) })
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, fmt.Errorf("build censored word automaton: %w", err)
	}
	return &Moderator{matcher: m, replacement: replacement, log: log}, nil
}

// LoadWords reads one word per line. Blank lines and lines starting with '#'
// are skipped.
func LoadWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, scanner.Err()
}

// Censor replaces every forbidden word with the replacement character and
// returns the words that were found, in order of appearance.
func (m *Moderator) Censor(original string) (string, []string) {
	mapping := normalize(original)
	if len(mapping.normalized) == 0 {
		return original, nil
	}
	terms := m.matcher.MultiPatternSearch(mapping.normalized, false)
	if len(terms) == 0 {
		return original, nil
	}

	runes := []rune(original)
	var found []string
	for _, term := range terms {
		start, end := term.Pos, term.Pos+len(term.Word)
		if start < 0 || end > len(mapping.origin) {
			continue
		}
		from, to := mapping.origin[start], mapping.origin[end-1]
		for i := from; i <= to; i++ {
			runes[i] = m.replacement
		}
		found = append(found, string(term.Word))
	}
	if len(found) > 0 && m.log != nil {
		m.log.Debug("Message censored", "words", found)
	}
	return string(runes), found
}

func normalize(input string) span {
	runes := []rune(input)
	s := span{
		normalized: make([]rune, 0, len(runes)),
		origin:     make([]int, 0, len(runes)),
	}
	for i, r := range runes {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		s.normalized = append(s.normalized, unicode.ToLower(clean))
		s.origin = append(s.origin, i)
	}
	return s
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps leet speak back to letters.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
