package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventImpression EventType = "impression"
	EventLoad       EventType = "load"
	EventClick      EventType = "click"
	EventHover      EventType = "hover"
	EventClose      EventType = "close"
	EventConversion EventType = "conversion"
	EventError      EventType = "error"
)

var eventTypes = map[EventType]bool{
	EventImpression: true,
	EventLoad:       true,
	EventClick:      true,
	EventHover:      true,
	EventClose:      true,
	EventConversion: true,
	EventError:      true,
}

func ParseEventType(s string) (EventType, bool) {
	t := EventType(strings.ToLower(strings.TrimSpace(s)))
	return t, eventTypes[t]
}

// CountsAsView reports whether the event bumps view_count.
func (t EventType) CountsAsView() bool {
	return t == EventImpression || t == EventLoad
}

func (t EventType) CountsAsClick() bool {
	return t == EventClick
}

type PerformanceEvent struct {
	ID         uuid.UUID        `json:"id"`
	AdID       uuid.UUID        `json:"ad_id"`
	EventType  EventType        `json:"event_type"`
	PageURL    string           `json:"page_url"`
	Referrer   string           `json:"referrer"`
	UserAgent  string           `json:"user_agent"`
	DeviceType string           `json:"device_type"`
	Browser    string           `json:"browser"`
	OS         string           `json:"os"`
	Country    string           `json:"country,omitempty"`
	City       string           `json:"city,omitempty"`
	Revenue    *decimal.Decimal `json:"revenue,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// EventMeta is the request-side context captured alongside an event.
type EventMeta struct {
	PageURL   string
	Referrer  string
	UserAgent string
	Country   string
	City      string
	Revenue   *decimal.Decimal
}

type EventTypeCount struct {
	EventType EventType `json:"event_type"`
	Count     int64     `json:"count"`
}

type EventsByDate struct {
	Date        string `json:"date"`
	Impressions int64  `json:"impressions"`
	Clicks      int64  `json:"clicks"`
}

type ReferrerStats struct {
	Referrer string `json:"referrer"`
	Count    int64  `json:"count"`
}

type DeviceStats struct {
	Mobile  int64 `json:"mobile"`
	Desktop int64 `json:"desktop"`
	Tablet  int64 `json:"tablet"`
	Bot     int64 `json:"bot"`
	Unknown int64 `json:"unknown"`
}

type AdPerformance struct {
	AdID         uuid.UUID        `json:"ad_id"`
	Name         string           `json:"name"`
	Position     Position         `json:"position"`
	ViewCount    int64            `json:"view_count"`
	ClickCount   int64            `json:"click_count"`
	CTR          float64          `json:"ctr"`
	Revenue      decimal.Decimal  `json:"revenue"`
	LastEventAt  *time.Time       `json:"last_event_at"`
	EventTotals  []EventTypeCount `json:"event_totals"`
	EventsByDate []EventsByDate   `json:"events_by_date"`
	TopReferrers []ReferrerStats  `json:"top_referrers"`
	DeviceStats  DeviceStats      `json:"device_stats"`
}

type EventHistory struct {
	Events     []PerformanceEvent `json:"events"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

type TrackEventRequest struct {
	EventType string `json:"event_type" validate:"required,event_type"`
	PageURL   string `json:"page_url" validate:"omitempty,max=2048"`
	Referrer  string `json:"referrer" validate:"omitempty,max=2048"`
	Country   string `json:"country" validate:"omitempty,len=2"`
	City      string `json:"city" validate:"omitempty,max=100"`
	Revenue   string `json:"revenue" validate:"omitempty,numeric"`
}
