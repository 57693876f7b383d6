package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type adJSON struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Type        AdType    `json:"type"`
	Format      string    `json:"format,omitempty"`
	Position    Position  `json:"position"`
	ContainerID string    `json:"container_id,omitempty"`
	ZIndex      int       `json:"z_index,omitempty"`
	ContentFields
	Targeting
	Schedule

	Priority       int    `json:"priority"`
	MaxImpressions *int64 `json:"max_impressions,omitempty"`
	MaxClicks      *int64 `json:"max_clicks,omitempty"`
	Enabled        bool   `json:"enabled"`
	Paused         bool   `json:"paused"`

	ViewCount  int64     `json:"view_count"`
	ClickCount int64     `json:"click_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (a Advertisement) MarshalJSON() ([]byte, error) {
	return json.Marshal(adJSON{
		ID:             a.ID,
		Name:           a.Name,
		Type:           a.Type,
		Format:         a.Format,
		Position:       a.Position,
		ContainerID:    a.ContainerID,
		ZIndex:         a.ZIndex,
		ContentFields:  FieldsOf(a.Content),
		Targeting:      a.Targeting,
		Schedule:       a.Schedule,
		Priority:       a.Priority,
		MaxImpressions: a.MaxImpressions,
		MaxClicks:      a.MaxClicks,
		Enabled:        a.Enabled,
		Paused:         a.Paused,
		ViewCount:      a.ViewCount,
		ClickCount:     a.ClickCount,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	})
}

func (a *Advertisement) UnmarshalJSON(data []byte) error {
	var raw adJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = Advertisement{
		ID:             raw.ID,
		Name:           raw.Name,
		Type:           raw.Type,
		Format:         raw.Format,
		Content:        NewContent(raw.Type, raw.ContentFields),
		Position:       raw.Position,
		ContainerID:    raw.ContainerID,
		ZIndex:         raw.ZIndex,
		Targeting:      raw.Targeting,
		Schedule:       raw.Schedule,
		Priority:       raw.Priority,
		MaxImpressions: raw.MaxImpressions,
		MaxClicks:      raw.MaxClicks,
		Enabled:        raw.Enabled,
		Paused:         raw.Paused,
		ViewCount:      raw.ViewCount,
		ClickCount:     raw.ClickCount,
		CreatedAt:      raw.CreatedAt,
		UpdatedAt:      raw.UpdatedAt,
	}
	return nil
}
