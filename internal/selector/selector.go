// Package selector implements the ad-selection algorithm (spec §4.5): a
// pure scoring function over a client and a snapshot of active campaigns,
// plus the Service that wires it to the cache, profile store, and event
// store for the read and click paths (spec §4.5, §4.6).
package selector

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/subculture-collective/adserve/internal/apperr"
	"github.com/subculture-collective/adserve/internal/models"
)

// Weights holds the scoring coefficients documented in spec §4.5 / §6.
type Weights struct {
	Profit      float64 // w_profit, default 0.5
	Relevance   float64 // w_relevance, default 0.25
	Fulfillment float64 // w_fulfillment, default 0.15
	TimeLeft    float64 // w_time_left, default 0 (disabled)
}

// Config bundles the weights and exploration rate the Selector needs.
type Config struct {
	Weights        Weights
	ExplorationEps float64 // probability of bypassing the targeting filter, default 0.04
}

// MLScoreFunc resolves the relevance scalar for (client, advertiser),
// defaulting to 0 when absent (spec §4.2). Implementations may fetch
// concurrently per candidate campaign (spec §5); the Selector itself calls
// it once per surviving candidate.
type MLScoreFunc func(ctx context.Context, clientID, advertiserID uuid.UUID) (float64, error)

// RandIntn returns a uniform integer in [0, n); satisfied by rand.Intn or a
// seeded test double so selection is reproducible under test.
type RandIntn func(n int) int

// scored pairs a candidate view with its computed score for sorting.
type scored struct {
	view  *models.ActiveCampaignView
	score float64
}

// Select implements spec §4.5 steps 3-9: the exploration branch, targeting
// and eligibility filters, multi-factor scoring, and descending-score /
// ascending-end_date / ascending-campaign_id ordering. It is a pure
// function of its inputs — no I/O — so it is directly unit-testable.
func Select(ctx context.Context, client *models.Client, all []*models.ActiveCampaignView, now uint32, cfg Config, mlScore MLScoreFunc, randIntn RandIntn) (*models.Ad, error) {
	if randIntn == nil {
		randIntn = rand.Intn
	}

	candidates := all
	if randIntn(100) >= int(cfg.ExplorationEps*100) {
		candidates = filterTargeting(all, client)
	}

	candidates = filterEligibility(candidates, client.ClientID)
	if len(candidates) == 0 {
		return nil, apperr.NotFound("no suitable campaign")
	}

	scoredCandidates, err := scoreCandidates(ctx, candidates, client.ClientID, now, cfg.Weights, mlScore)
	if err != nil {
		return nil, err
	}

	sort.Slice(scoredCandidates, func(i, j int) bool {
		a, b := scoredCandidates[i], scoredCandidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.view.EndDate != b.view.EndDate {
			return a.view.EndDate < b.view.EndDate
		}
		return a.view.CampaignID.String() < b.view.CampaignID.String()
	})

	top := scoredCandidates[0].view
	return &models.Ad{
		AdID:         top.CampaignID,
		AdTitle:      top.AdTitle,
		AdText:       top.AdText,
		AdvertiserID: top.AdvertiserID,
	}, nil
}

// filterTargeting keeps campaigns whose targeting constraints admit client
// (spec §4.5 step 4). Every constraint is optional; an unset field imposes
// no restriction.
func filterTargeting(all []*models.ActiveCampaignView, client *models.Client) []*models.ActiveCampaignView {
	out := make([]*models.ActiveCampaignView, 0, len(all))
	for _, v := range all {
		t := v.Targeting
		if t.Location != nil && *t.Location != client.Location {
			continue
		}
		if t.Gender != nil && *t.Gender != models.GenderAll && *t.Gender != client.Gender {
			continue
		}
		if t.AgeFrom != nil && client.Age < *t.AgeFrom {
			continue
		}
		if t.AgeTo != nil && client.Age > *t.AgeTo {
			continue
		}
		out = append(out, v)
	}
	return out
}

// filterEligibility keeps campaigns clientID has never clicked and that
// still have impression headroom (spec §4.5 step 5).
func filterEligibility(all []*models.ActiveCampaignView, clientID uuid.UUID) []*models.ActiveCampaignView {
	out := make([]*models.ActiveCampaignView, 0, len(all))
	for _, v := range all {
		if v.HasClicked(clientID) {
			continue
		}
		if uint32(len(v.ViewClients)) >= v.ImpressionsLimit {
			continue
		}
		out = append(out, v)
	}
	return out
}

// scoreCandidates computes the spec §4.5 step 7 formula for every
// candidate, fetching ml_score concurrently per campaign (spec §5) and
// joining before returning.
func scoreCandidates(ctx context.Context, candidates []*models.ActiveCampaignView, clientID uuid.UUID, now uint32, w Weights, mlScore MLScoreFunc) ([]scored, error) {
	out := make([]scored, len(candidates))
	relevances := make([]float64, len(candidates))

	var wg sync.WaitGroup
	errs := make([]error, len(candidates))
	for i, v := range candidates {
		wg.Add(1)
		go func(i int, v *models.ActiveCampaignView) {
			defer wg.Done()
			r, err := mlScore(ctx, clientID, v.AdvertiserID)
			if err != nil {
				errs[i] = err
				return
			}
			relevances[i] = r
		}(i, v)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	for i, v := range candidates {
		remImp := float64(v.RemainingImpressions())
		remClk := float64(v.RemainingClicks())

		profit := remImp*v.CostPerImpression + remClk*v.CostPerClick
		// fulfillment is intentionally left as the source computes it: it
		// maximizes for campaigns with the most headroom left, i.e. the
		// least fulfilled ones (spec §9 open question, preserved as-is).
		fulfillment := safeDiv(remImp, float64(v.ImpressionsLimit)) + safeDiv(remClk, float64(v.ClicksLimit))
		timeLeft := float64(v.EndDate) - float64(now)

		score := w.Profit*profit + w.Relevance*relevances[i] + w.Fulfillment*fulfillment - w.TimeLeft*timeLeft
		out[i] = scored{view: v, score: score}
	}
	return out, nil
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
