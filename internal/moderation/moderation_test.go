package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/subculture-collective/adserve/internal/apperr"
)

type fakeWordLister struct {
	words []string
	err   error
}

func (f *fakeWordLister) List(ctx context.Context) ([]string, error) {
	return f.words, f.err
}

func newTestService(words []string, sensitivity float64) *Service {
	return &Service{words: &fakeWordLister{words: words}, sensitivity: sensitivity}
}

// filterPhrase normalizes Latin confusable substitutes into their Cyrillic
// canonical form, so "spam" typed in Latin collapses to "спам". The obscene
// word list is stored in this same canonical Cyrillic form (grounded on the
// original service's confusable table, which exists precisely to catch
// Latin-lookalike evasion of Cyrillic words) — every test below stores
// Cyrillic words and feeds Latin-spelled evasions as input.
func TestFilterPhrase_NormalizesLatinConfusablesToCyrillic(t *testing.T) {
	if got := filterPhrase("spam"); got != "спам" {
		t.Errorf("filterPhrase(%q) = %q, want %q", "spam", got, "спам")
	}
}

func TestHideAbusiveContent_InactivePassesThrough(t *testing.T) {
	svc := newTestService([]string{"спам"}, 0.3)
	text := []string{"this has spam in it"}

	out, err := svc.HideAbusiveContent(context.Background(), text, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != text[0] {
		t.Errorf("inactive moderation altered text: got %q, want %q", out[0], text[0])
	}
}

func TestHideAbusiveContent_MasksExactMatch(t *testing.T) {
	svc := newTestService([]string{"спам"}, 0.3)
	out, err := svc.HideAbusiveContent(context.Background(), []string{"buy spam now"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != "buy *** now" {
		t.Errorf("HideAbusiveContent = %q, want %q", out[0], "buy *** now")
	}
}

func TestHideAbusiveContent_PropagatesListError(t *testing.T) {
	svc := &Service{words: &fakeWordLister{err: errors.New("redis down")}, sensitivity: 0.3}
	if _, err := svc.HideAbusiveContent(context.Background(), []string{"hello"}, true); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestCheckAbusiveContent_InactiveNeverRejects(t *testing.T) {
	svc := newTestService([]string{"спам"}, 0.3)
	err := svc.CheckAbusiveContent(context.Background(), []string{"full of spam"}, false)
	if err != nil {
		t.Errorf("inactive moderation rejected text: %v", err)
	}
}

func TestCheckAbusiveContent_RejectsExactMatch(t *testing.T) {
	svc := newTestService([]string{"спам"}, 0.3)
	err := svc.CheckAbusiveContent(context.Background(), []string{"this is spam"}, true)
	if err == nil {
		t.Fatal("expected Censorship error, got nil")
	}
	appErr, ok := apperr.As(err)
	if !ok || appErr.Code != apperr.CodeCensorship {
		t.Errorf("expected Censorship error, got %v", err)
	}
}

func TestCheckAbusiveContent_AllowsCleanText(t *testing.T) {
	svc := newTestService([]string{"спам"}, 0.3)
	err := svc.CheckAbusiveContent(context.Background(), []string{"totally fine copy"}, true)
	if err != nil {
		t.Errorf("clean text was rejected: %v", err)
	}
}

func TestCheckAbusiveContent_SensitivityGatesFuzzyMatch(t *testing.T) {
	// "spam" normalizes to "спам"; "spams" normalizes to "спамс", distance 1
	// away. At zero sensitivity the threshold is round(4*0) = 0, so only an
	// exact match is caught.
	strict := newTestService([]string{"спам"}, 0.0)
	if err := strict.CheckAbusiveContent(context.Background(), []string{"spams everywhere"}, true); err != nil {
		t.Errorf("zero-sensitivity matched a near-miss: %v", err)
	}

	// At higher sensitivity the threshold widens enough to catch it.
	lenient := newTestService([]string{"спам"}, 0.5)
	if err := lenient.CheckAbusiveContent(context.Background(), []string{"spams everywhere"}, true); err == nil {
		t.Error("lenient sensitivity failed to catch a near-miss match")
	}
}

func TestThresholdFor(t *testing.T) {
	cases := []struct {
		wordLen     int
		sensitivity float64
		want        int
	}{
		{4, 0.0, 0},
		{4, 0.5, 2},
		{10, 0.3, 3},
	}
	for _, c := range cases {
		if got := thresholdFor(c.wordLen, c.sensitivity); got != c.want {
			t.Errorf("thresholdFor(%d, %v) = %d, want %d", c.wordLen, c.sensitivity, got, c.want)
		}
	}
}

func TestInvalidateCache_NilCacheIsNoop(t *testing.T) {
	// invalidateCache is a no-op when cache is nil, so this confirms the
	// invalidation step AddWords runs does not fail when the cache hasn't
	// been wired (AddWords itself needs a repository.ModerationStore and is
	// not exercised here).
	svc := &Service{words: &fakeWordLister{}, sensitivity: 0.3}
	if err := svc.invalidateCache(context.Background()); err != nil {
		t.Errorf("invalidateCache with nil cache returned error: %v", err)
	}
}
