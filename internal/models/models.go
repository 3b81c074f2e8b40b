// Package models defines the persisted and derived entities of the
// ad-serving domain: client/advertiser profiles, campaigns and their
// live cache projection, fact events, and moderation state.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Gender is a client's declared gender, or a campaign targeting wildcard.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	// GenderAll is only valid as a Targeting.Gender value, never on a Client.
	GenderAll Gender = "ALL"
)

// Client is a person eligible to be served ads.
type Client struct {
	ClientID uuid.UUID `json:"client_id" db:"client_id"`
	Login    string    `json:"login" db:"login"`
	Location string    `json:"location" db:"location"`
	Gender   Gender    `json:"gender" db:"gender"`
	Age      int       `json:"age" db:"age"` // 0..160
}

// Advertiser owns zero or more campaigns.
type Advertiser struct {
	AdvertiserID uuid.UUID `json:"advertiser_id" db:"advertiser_id"`
	Name         string    `json:"name" db:"name"`
}

// MLScore is a precomputed per-(client, advertiser) relevance scalar.
// Missing pairs default to 0 at read time; there is no zero-value row.
type MLScore struct {
	ClientID     uuid.UUID `json:"client_id" db:"client_id"`
	AdvertiserID uuid.UUID `json:"advertiser_id" db:"advertiser_id"`
	Score        float64   `json:"score" db:"score"`
}

// Targeting restricts which clients a campaign is eligible to serve to.
// Every field is optional; an unset field imposes no constraint.
type Targeting struct {
	Gender   *Gender `json:"gender,omitempty" db:"gender"`
	AgeFrom  *int    `json:"age_from,omitempty" db:"age_from"`
	AgeTo    *int    `json:"age_to,omitempty" db:"age_to"`
	Location *string `json:"location,omitempty" db:"location"`
}

// Campaign is the canonical, persisted advertising unit.
type Campaign struct {
	CampaignID   uuid.UUID `json:"campaign_id" db:"campaign_id"`
	AdvertiserID uuid.UUID `json:"advertiser_id" db:"advertiser_id"`

	ImpressionsLimit uint32 `json:"impressions_limit" db:"impressions_limit"`
	ClicksLimit      uint32 `json:"clicks_limit" db:"clicks_limit"`

	CostPerImpression float64 `json:"cost_per_impression" db:"cost_per_impression"`
	CostPerClick      float64 `json:"cost_per_click" db:"cost_per_click"`

	AdTitle string `json:"ad_title" db:"ad_title"`
	AdText  string `json:"ad_text" db:"ad_text"`

	StartDate uint32 `json:"start_date" db:"start_date"`
	EndDate   uint32 `json:"end_date" db:"end_date"`

	Targeting Targeting `json:"targeting" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsActiveOn reports whether the campaign's window contains day.
func (c *Campaign) IsActiveOn(day uint32) bool {
	return c.StartDate <= day && day <= c.EndDate
}

// ActiveCampaignView is the ActiveCache's live projection of a campaign:
// the campaign fields plus the per-client view/click sets that drive
// deduplication and eligibility. It is not persisted independently of
// the campaign row and the fact stores it is rebuilt from.
type ActiveCampaignView struct {
	Campaign

	// ViewClients holds every client_id that has ever been served this
	// campaign (click_clients is always a subset). Tagged for JSON so the
	// cache can round-trip it through Redis; this type is never returned
	// directly over HTTP (the Selector projects to Ad instead).
	ViewClients map[uuid.UUID]struct{} `json:"view_clients"`
	// ClickClients holds every client_id that has clicked this campaign.
	ClickClients map[uuid.UUID]struct{} `json:"click_clients"`
}

// HasViewed reports whether client has an impression recorded.
func (v *ActiveCampaignView) HasViewed(client uuid.UUID) bool {
	_, ok := v.ViewClients[client]
	return ok
}

// HasClicked reports whether client has a click recorded.
func (v *ActiveCampaignView) HasClicked(client uuid.UUID) bool {
	_, ok := v.ClickClients[client]
	return ok
}

// RemainingImpressions is impressions_limit - |view_clients|, floored at 0.
func (v *ActiveCampaignView) RemainingImpressions() uint32 {
	seen := uint32(len(v.ViewClients))
	if seen >= v.ImpressionsLimit {
		return 0
	}
	return v.ImpressionsLimit - seen
}

// RemainingClicks is clicks_limit - |click_clients|, floored at 0.
func (v *ActiveCampaignView) RemainingClicks() uint32 {
	clicked := uint32(len(v.ClickClients))
	if clicked >= v.ClicksLimit {
		return 0
	}
	return v.ClicksLimit - clicked
}

// Clone returns a deep copy, so callers can mutate a snapshot without
// racing the cache's own read-modify-write cycle.
func (v *ActiveCampaignView) Clone() *ActiveCampaignView {
	out := &ActiveCampaignView{
		Campaign:     v.Campaign,
		ViewClients:  make(map[uuid.UUID]struct{}, len(v.ViewClients)),
		ClickClients: make(map[uuid.UUID]struct{}, len(v.ClickClients)),
	}
	for k := range v.ViewClients {
		out.ViewClients[k] = struct{}{}
	}
	for k := range v.ClickClients {
		out.ClickClients[k] = struct{}{}
	}
	return out
}

// EventKind distinguishes the two append-only fact tables.
type EventKind string

const (
	EventKindView  EventKind = "view"
	EventKindClick EventKind = "click"
)

// ViewEvent is a per-day, per-client, at-most-once impression fact row.
type ViewEvent struct {
	CampaignID uuid.UUID `json:"campaign_id" db:"campaign_id"`
	ClientID   uuid.UUID `json:"client_id" db:"client_id"`
	Day        uint32    `json:"day" db:"day"`
	Cost       float64   `json:"cost" db:"cost"`
}

// ClickEvent is a per-day, per-client, at-most-once click fact row.
type ClickEvent struct {
	CampaignID uuid.UUID `json:"campaign_id" db:"campaign_id"`
	ClientID   uuid.UUID `json:"client_id" db:"client_id"`
	Day        uint32    `json:"day" db:"day"`
	Cost       float64   `json:"cost" db:"cost"`
}

// DailyStat is one day of a campaign's (or advertiser's union of
// campaigns') impression/click/spend roll-up. Per-campaign series are
// gap-filled; per-advertiser series hold observed days only.
type DailyStat struct {
	Day          uint32  `json:"day"`
	Impressions  uint32  `json:"impressions_count"`
	Clicks       uint32  `json:"clicks_count"`
	SpentImp     float64 `json:"spent_impressions"`
	SpentClk     float64 `json:"spent_clicks"`
	SpentTotal   float64 `json:"spent_total"`
	Conversion   float64 `json:"conversion"` // 100 * clicks / impressions, 0 if impressions = 0
}

// Stat is the fold of every DailyStat for a campaign or advertiser.
type Stat struct {
	Impressions uint32  `json:"impressions_count"`
	Clicks      uint32  `json:"clicks_count"`
	SpentImp    float64 `json:"spent_impressions"`
	SpentClk    float64 `json:"spent_clicks"`
	SpentTotal  float64 `json:"spent_total"`
	Conversion  float64 `json:"conversion"`
}

// ObsceneWord is one entry in the moderation word list.
type ObsceneWord struct {
	Word string `json:"word" db:"word"` // stored lowercased, unique
}

// ModerationSetting is the process-wide auto-moderate toggle.
type ModerationSetting struct {
	AutoModerateEnabled bool `json:"auto_moderate_enabled" db:"auto_moderate_enabled"`
}

// Ad is the Selector's public projection of a winning campaign.
type Ad struct {
	AdID         uuid.UUID `json:"ad_id"`
	AdTitle      string    `json:"ad_title"`
	AdText       string    `json:"ad_text"`
	AdvertiserID uuid.UUID `json:"advertiser_id"`
}

// TextGenMode selects which campaign fields a TextGenerator call rewrites.
type TextGenMode string

const (
	TextGenModeTitle TextGenMode = "TITLE"
	TextGenModeText  TextGenMode = "TEXT"
	TextGenModeAll   TextGenMode = "ALL"
)
