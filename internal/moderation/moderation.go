// Package moderation implements the obscene-content filter (spec §4.9): a
// fuzzy, confusable-aware word matcher with a masking mode
// (HideAbusiveContent) and a rejecting mode (CheckAbusiveContent). Campaign
// creation and generated ad copy both go through the rejecting mode.
package moderation

import (
	"context"
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/subculture-collective/adserve/internal/apperr"
	"github.com/subculture-collective/adserve/internal/repository"
)

const maskedPlaceholder = "***"

// substitution collapses every string in From into To during normalization.
// confusables is a slice, not a map, so the replacement order is fixed: Go
// map iteration order is randomized, and several entries below share a
// source character (e.g. "b" appears under both "б" and "в"), so the order
// genuinely changes the result. This list follows the original service's
// declaration order.
type substitution struct {
	To   string
	From []string
}

var confusables = []substitution{
	{"а", []string{"а", "a", "@"}},
	{"б", []string{"б", "6", "b"}},
	{"в", []string{"в", "b", "v"}},
	{"г", []string{"г", "r", "g"}},
	{"д", []string{"д", "d"}},
	{"е", []string{"е", "e"}},
	{"ё", []string{"ё", "e"}},
	{"ж", []string{"ж", "zh", "*"}},
	{"з", []string{"з", "3", "z"}},
	{"и", []string{"и", "u", "i"}},
	{"й", []string{"й", "u", "i"}},
	{"к", []string{"к", "k", "i{", "|{"}},
	{"л", []string{"л", "l", "ji"}},
	{"м", []string{"м", "m"}},
	{"н", []string{"н", "n"}},
	{"о", []string{"о", "o", "0"}},
	{"п", []string{"п", "n", "p"}},
	{"р", []string{"р", "r", "p"}},
	{"с", []string{"с", "c", "s"}},
	{"т", []string{"т", "m", "t"}},
	{"у", []string{"у", "y", "u"}},
	{"ф", []string{"ф", "f"}},
	{"х", []string{"х", "x", "h", "}{", "]["}},
	{"ц", []string{"ц", "c", "u,"}},
	{"ч", []string{"ч", "ch"}},
	{"ш", []string{"ш", "sh"}},
	{"щ", []string{"щ", "sch"}},
	{"ь", []string{"ь", "b"}},
	{"ы", []string{"ы", "bi"}},
	{"ъ", []string{"ъ"}},
	{"э", []string{"э", "e"}},
	{"ю", []string{"ю", "io"}},
	{"я", []string{"я", "ya"}},
}

func filterPhrase(phrase string) string {
	for _, sub := range confusables {
		for _, from := range sub.From {
			phrase = strings.ReplaceAll(phrase, from, sub.To)
		}
	}
	return phrase
}

// wordLister is the minimal dependency Service needs to read the current
// obscene-word list; satisfied by *WordCache (read-through) in production
// and directly by *repository.ModerationStore in tests.
type wordLister interface {
	List(ctx context.Context) ([]string, error)
}

// Service is the moderation filter: confusable-normalize, then fuzzy-match
// against the persisted obscene-word list at a configurable sensitivity.
// The word list itself is read through WordCache (spec §4.9's read-through
// cache); admin mutations go straight to the store and then invalidate it.
type Service struct {
	words       wordLister
	cache       *WordCache
	store       *repository.ModerationStore
	sensitivity float64
}

// New wires a Service to the persisted word list, its read-through cache,
// and the sensitivity threshold (spec §6 default 0.3).
func New(store *repository.ModerationStore, cache *WordCache, sensitivity float64) *Service {
	return &Service{words: cache, cache: cache, store: store, sensitivity: sensitivity}
}

// HideAbusiveContent masks each abusive word in every input string with
// "***", word-by-word, when active is true. Inactive moderation passes
// text through unchanged (spec §4.9).
func (s *Service) HideAbusiveContent(ctx context.Context, text []string, active bool) ([]string, error) {
	if !active {
		return text, nil
	}
	abusiveWords, err := s.words.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(text))
	for i, t := range text {
		out[i] = s.maskAbusiveWords(t, abusiveWords)
	}
	return out, nil
}

func (s *Service) maskAbusiveWords(original string, abusiveWords []string) string {
	words := strings.Fields(original)
	for i, w := range words {
		words[i] = s.maskWord(w, abusiveWords)
	}
	return strings.Join(words, " ")
}

func (s *Service) maskWord(word string, abusiveWords []string) string {
	cleaned := filterPhrase(strings.ToLower(strings.ReplaceAll(word, " ", "")))
	for _, abusive := range abusiveWords {
		if s.isAbusiveWord(cleaned, abusive) {
			return maskedPlaceholder
		}
	}
	return word
}

// isAbusiveWord reports whether any substring of cleaned the same length as
// abusiveWord is within the sensitivity-scaled Levenshtein distance of it.
// This sliding-window check (rather than a whole-word check) is what lets
// masking catch an abusive word embedded inside a longer one.
func (s *Service) isAbusiveWord(cleaned, abusiveWord string) bool {
	wordRunes := []rune(abusiveWord)
	cleanedRunes := []rune(cleaned)
	wordLen := len(wordRunes)
	cleanedLen := len(cleanedRunes)
	if wordLen == 0 || wordLen > cleanedLen {
		return false
	}

	threshold := thresholdFor(wordLen, s.sensitivity)
	for start := 0; start <= cleanedLen-wordLen; start++ {
		fragment := string(cleanedRunes[start : start+wordLen])
		if levenshtein.ComputeDistance(fragment, abusiveWord) <= threshold {
			return true
		}
	}
	return false
}

// CheckAbusiveContent reports whether any string in text contains an
// abusive word (whole-word match, unlike the sliding-window match used for
// masking), returning a Censorship error naming the offending word if so.
// Inactive moderation never rejects (spec §4.9).
func (s *Service) CheckAbusiveContent(ctx context.Context, text []string, active bool) error {
	if !active {
		return nil
	}
	abusiveWords, err := s.words.List(ctx)
	if err != nil {
		return err
	}

	for _, t := range text {
		filtered := filterPhrase(t)
		for _, w := range strings.Fields(filtered) {
			if matched, ok := s.isAbusiveWordVec(w, abusiveWords); ok {
				return apperr.Censorship(matched)
			}
		}
	}
	return nil
}

func (s *Service) isAbusiveWordVec(word string, abusiveWords []string) (string, bool) {
	cleaned := filterPhrase(strings.ToLower(strings.ReplaceAll(word, " ", "")))
	for _, abusive := range abusiveWords {
		threshold := thresholdFor(len([]rune(abusive)), s.sensitivity)
		if levenshtein.ComputeDistance(cleaned, abusive) <= threshold {
			return cleaned, true
		}
	}
	return "", false
}

func thresholdFor(wordLen int, sensitivity float64) int {
	return int(math.Round(float64(wordLen) * sensitivity))
}

// ListWords returns the full obscene-word set, served through the
// read-through cache.
func (s *Service) ListWords(ctx context.Context) ([]string, error) {
	return s.words.List(ctx)
}

// AddWords appends to the obscene-word set and invalidates the cache so the
// next read reflects the change (spec §4.9).
func (s *Service) AddWords(ctx context.Context, words []string) error {
	if err := s.store.AddWords(ctx, words); err != nil {
		return err
	}
	return s.invalidateCache(ctx)
}

// RemoveWords deletes from the obscene-word set and invalidates the cache.
func (s *Service) RemoveWords(ctx context.Context, words []string) error {
	if err := s.store.RemoveWords(ctx, words); err != nil {
		return err
	}
	return s.invalidateCache(ctx)
}

func (s *Service) invalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx)
}

// AutoModerateEnabled reports the process-wide auto-moderate toggle.
func (s *Service) AutoModerateEnabled(ctx context.Context) (bool, error) {
	return s.store.GetAutoModerateEnabled(ctx)
}

// SetAutoModerateEnabled flips the process-wide auto-moderate toggle.
func (s *Service) SetAutoModerateEnabled(ctx context.Context, enabled bool) error {
	return s.store.SetAutoModerateEnabled(ctx, enabled)
}
