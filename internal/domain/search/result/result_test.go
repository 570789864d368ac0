package result

import (
	"math"
	"testing"

	"github.com/kailas-cloud/influencersphere/internal/domain/profile"
	"github.com/kailas-cloud/influencersphere/internal/domain/score"
)

func TestScoredProfile_Record(t *testing.T) {
	p := profile.FromRecord("ig_a", map[string]any{"username": "a"})
	r := New(p, score.New(91))

	rec := r.Record()
	if rec["market_score"] != 91.0 {
		t.Errorf("market_score = %v", rec["market_score"])
	}
	if rec["market_tier"] != "A-List Talent" {
		t.Errorf("market_tier = %v", rec["market_tier"])
	}
	if rec["id"] != "ig_a" || rec["username"] != "a" {
		t.Errorf("profile fields missing: %v", rec)
	}
	if _, ok := p.Record()["market_score"]; ok {
		t.Error("Record() must not mutate the profile")
	}
}

func TestPage_HasMore(t *testing.T) {
	if !(Page{Total: 30, Page: 1, PageSize: 25}).HasMore() {
		t.Error("expected more results")
	}
	if (Page{Total: 25, Page: 1, PageSize: 25}).HasMore() {
		t.Error("expected no more results")
	}
}

func TestPage_HasMore_LargePage(t *testing.T) {
	if (Page{Total: 5, Page: 1 << 62, PageSize: 4}).HasMore() {
		t.Error("a page far past the end has no more results")
	}
	if (Page{Total: 5, Page: math.MaxInt, PageSize: 100}).HasMore() {
		t.Error("the last representable page has no more results")
	}
	if (Page{Total: 5, Page: 1}).HasMore() {
		t.Error("zero page size has no more results")
	}
}
