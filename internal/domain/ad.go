package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrAdNotFound = errors.New("advertisement not found")

type AdType string

const (
	AdTypeText    AdType = "text"
	AdTypeImage   AdType = "image"
	AdTypeVideo   AdType = "video"
	AdTypeHTML    AdType = "html"
	AdTypeBanner  AdType = "banner"
	AdTypeAdSense AdType = "adsense"
)

type Position string

const (
	PositionHeader    Position = "header"
	PositionSidebar   Position = "sidebar"
	PositionFooter    Position = "footer"
	PositionInContent Position = "in-content"
	PositionPopup     Position = "popup"
)

var positions = map[Position]bool{
	PositionHeader:    true,
	PositionSidebar:   true,
	PositionFooter:    true,
	PositionInContent: true,
	PositionPopup:     true,
}

func ParsePosition(s string) (Position, bool) {
	p := Position(strings.ToLower(strings.TrimSpace(s)))
	return p, positions[p]
}

type Targeting struct {
	Pages             []string `json:"pages"`
	ExcludedPages     []string `json:"excluded_pages,omitempty"`
	Devices           []string `json:"devices,omitempty"`
	Countries         []string `json:"countries,omitempty"`
	TargetEntity      string   `json:"target_entity,omitempty"`
	TargetAllEntities bool     `json:"target_all_entities"`
}

// Scope reports which entity tier the ad belongs to.
func (t Targeting) Scope() EntityScope {
	switch {
	case t.TargetEntity != "":
		return ScopeEntity
	case t.TargetAllEntities:
		return ScopeAllEntities
	default:
		return ScopeGeneral
	}
}

type EntityScope int

const (
	ScopeEntity EntityScope = iota
	ScopeAllEntities
	ScopeGeneral
)

type Schedule struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Days      []int      `json:"schedule_days,omitempty"`
	Hours     []int      `json:"schedule_hours,omitempty"`
}

type Advertisement struct {
	ID          uuid.UUID
	Name        string
	Type        AdType
	Format      string
	Content     AdContent
	Position    Position
	ContainerID string
	ZIndex      int
	Targeting   Targeting
	Schedule    Schedule

	Priority       int
	MaxImpressions *int64
	MaxClicks      *int64
	Enabled        bool
	Paused         bool

	ViewCount  int64
	ClickCount int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RequestContext is what the page layer knows about the visitor when asking for ads.
type RequestContext struct {
	Path       string `json:"path"`
	DeviceType string `json:"device_type,omitempty"`
	Country    string `json:"country,omitempty"`
	EntitySlug string `json:"entity_slug,omitempty"`
}

func (c RequestContext) EntityScoped() bool {
	return c.EntitySlug != ""
}
