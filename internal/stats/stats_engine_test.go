package stats

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/subculture-collective/adserve/internal/models"
)

type fakeDailyRowSource struct {
	campaignRows   []models.DailyStat
	advertiserRows []models.DailyStat
}

func (f *fakeDailyRowSource) DailyRowsFor(ctx context.Context, campaignID uuid.UUID) ([]models.DailyStat, error) {
	return f.campaignRows, nil
}

func (f *fakeDailyRowSource) DailyRowsForAdvertiser(ctx context.Context, advertiserID uuid.UUID) ([]models.DailyStat, error) {
	return f.advertiserRows, nil
}

func TestDaily_FillsGapsBetweenObservedDays(t *testing.T) {
	fake := &fakeDailyRowSource{campaignRows: []models.DailyStat{
		{Day: 10, Impressions: 100, Clicks: 5, SpentImp: 1, SpentClk: 2},
		{Day: 13, Impressions: 50, Clicks: 1, SpentImp: 0.5, SpentClk: 1},
	}}
	e := &Engine{events: fake}

	rows, err := e.Daily(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4 (days 10,11,12,13)", len(rows))
	}
	for i, day := range []uint32{10, 11, 12, 13} {
		if rows[i].Day != day {
			t.Errorf("rows[%d].Day = %d, want %d", i, rows[i].Day, day)
		}
	}
	if rows[1].Impressions != 0 || rows[2].Impressions != 0 {
		t.Errorf("gap-filled days should be zero-valued, got %+v %+v", rows[1], rows[2])
	}
}

func TestDaily_RecomputesConversion(t *testing.T) {
	fake := &fakeDailyRowSource{campaignRows: []models.DailyStat{
		{Day: 1, Impressions: 200, Clicks: 10},
	}}
	e := &Engine{events: fake}

	rows, err := e.Daily(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 5.0; rows[0].Conversion != want {
		t.Errorf("Conversion = %v, want %v", rows[0].Conversion, want)
	}
}

func TestDaily_ZeroImpressionsYieldsZeroConversion(t *testing.T) {
	fake := &fakeDailyRowSource{campaignRows: []models.DailyStat{
		{Day: 1, Impressions: 0, Clicks: 0},
	}}
	e := &Engine{events: fake}

	rows, err := e.Daily(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].Conversion != 0 {
		t.Errorf("Conversion = %v, want 0", rows[0].Conversion)
	}
}

func TestDaily_EmptyRowsReturnsEmpty(t *testing.T) {
	e := &Engine{events: &fakeDailyRowSource{}}
	rows, err := e.Daily(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestTotal_FoldsAcrossRows(t *testing.T) {
	fake := &fakeDailyRowSource{campaignRows: []models.DailyStat{
		{Day: 1, Impressions: 100, Clicks: 10, SpentImp: 1, SpentClk: 5},
		{Day: 2, Impressions: 200, Clicks: 20, SpentImp: 2, SpentClk: 10},
	}}
	e := &Engine{events: fake}

	total, err := e.Total(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total.Impressions != 300 {
		t.Errorf("Impressions = %d, want 300", total.Impressions)
	}
	if total.Clicks != 30 {
		t.Errorf("Clicks = %d, want 30", total.Clicks)
	}
	if total.SpentTotal != 18 {
		t.Errorf("SpentTotal = %v, want 18", total.SpentTotal)
	}
	if total.Conversion != 10 {
		t.Errorf("Conversion = %v, want 10", total.Conversion)
	}
}

func TestDailyForAdvertiser_NoGapFillSortsDescendingByDay(t *testing.T) {
	// DailyRowsForAdvertiser is expected ordered descending by day already
	// (matching the repository's query). Unlike Daily, the advertiser
	// aggregate does not gap-fill: only observed days are returned.
	fake := &fakeDailyRowSource{advertiserRows: []models.DailyStat{
		{Day: 5, Impressions: 10, Clicks: 1},
		{Day: 3, Impressions: 20, Clicks: 2},
	}}
	e := &Engine{events: fake}

	rows, err := e.DailyForAdvertiser(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (days 5,3; no gap-fill)", len(rows))
	}
	for i, day := range []uint32{5, 3} {
		if rows[i].Day != day {
			t.Errorf("rows[%d].Day = %d, want %d", i, rows[i].Day, day)
		}
	}
}

func TestTotalForAdvertiser_FoldsAcrossRows(t *testing.T) {
	fake := &fakeDailyRowSource{advertiserRows: []models.DailyStat{
		{Day: 1, Impressions: 50, Clicks: 5, SpentImp: 0.5, SpentClk: 0.5},
		{Day: 2, Impressions: 50, Clicks: 5, SpentImp: 0.5, SpentClk: 0.5},
	}}
	e := &Engine{events: fake}

	total, err := e.TotalForAdvertiser(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total.Impressions != 100 || total.Clicks != 10 {
		t.Errorf("got impressions=%d clicks=%d, want 100/10", total.Impressions, total.Clicks)
	}
}
