// Package seed reads advertisement definitions from YAML.
package seed

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
	"github.com/techno-flashi/techno-flashi-sub000/pkg/validator"
	"gopkg.in/yaml.v3"
)

type File struct {
	Ads []AdDefinition `yaml:"ads"`
}

type AdDefinition struct {
	Name        string `yaml:"name" json:"name" validate:"required,max=200"`
	Type        string `yaml:"type" json:"type" validate:"required,oneof=text image video html banner adsense"`
	Format      string `yaml:"format" json:"format"`
	Position    string `yaml:"position" json:"position" validate:"required,position"`
	ContainerID string `yaml:"container_id" json:"container_id"`
	ZIndex      int    `yaml:"z_index" json:"z_index"`

	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	ImageURL    string `yaml:"image_url" json:"image_url" validate:"omitempty,url"`
	VideoURL    string `yaml:"video_url" json:"video_url" validate:"omitempty,url"`
	PosterURL   string `yaml:"poster_url" json:"poster_url" validate:"omitempty,url"`
	TargetURL   string `yaml:"target_url" json:"target_url" validate:"omitempty,url"`
	AltText     string `yaml:"alt_text" json:"alt_text"`
	HTML        string `yaml:"html" json:"html"`
	CSS         string `yaml:"css" json:"css"`
	JS          string `yaml:"js" json:"js"`
	AdCode      string `yaml:"ad_code" json:"ad_code"`
	Network     string `yaml:"network" json:"network"`

	Pages             []string `yaml:"pages" json:"pages"`
	ExcludedPages     []string `yaml:"excluded_pages" json:"excluded_pages"`
	Devices           []string `yaml:"devices" json:"devices"`
	Countries         []string `yaml:"countries" json:"countries"`
	TargetEntity      string   `yaml:"target_entity" json:"target_entity"`
	TargetAllEntities bool     `yaml:"target_all_entities" json:"target_all_entities"`

	StartDate string `yaml:"start_date" json:"start_date"`
	EndDate   string `yaml:"end_date" json:"end_date"`
	Days      []int  `yaml:"days" json:"days" validate:"dive,gte=0,lte=6"`
	Hours     []int  `yaml:"hours" json:"hours" validate:"dive,gte=0,lte=23"`

	Priority       int    `yaml:"priority" json:"priority"`
	MaxImpressions *int64 `yaml:"max_impressions" json:"max_impressions" validate:"omitempty,gte=0"`
	MaxClicks      *int64 `yaml:"max_clicks" json:"max_clicks" validate:"omitempty,gte=0"`
	Enabled        *bool  `yaml:"enabled" json:"enabled"`
	Paused         bool   `yaml:"paused" json:"paused"`
}

// Parse decodes and validates a seed file. Every invalid definition is
// reported, not just the first.
func Parse(r io.Reader) ([]*domain.Advertisement, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}

	var problems []string
	ads := make([]*domain.Advertisement, 0, len(f.Ads))

	for i := range f.Ads {
		def := &f.Ads[i]

		if errs := validator.Validate(def); len(errs) > 0 {
			for _, e := range errs {
				problems = append(problems, fmt.Sprintf("ads[%d] (%s): %s", i, def.Name, e.Message))
			}
			continue
		}

		ad, err := def.toAdvertisement()
		if err != nil {
			problems = append(problems, fmt.Sprintf("ads[%d] (%s): %v", i, def.Name, err))
			continue
		}
		ads = append(ads, ad)
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid seed file:\n  %s", strings.Join(problems, "\n  "))
	}

	return ads, nil
}

func (d *AdDefinition) toAdvertisement() (*domain.Advertisement, error) {
	start, err := parseDate(d.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}
	end, err := parseDate(d.EndDate)
	if err != nil {
		return nil, fmt.Errorf("end_date: %w", err)
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, fmt.Errorf("end_date is before start_date")
	}

	adType := domain.AdType(d.Type)
	position, _ := domain.ParsePosition(d.Position)

	enabled := true
	if d.Enabled != nil {
		enabled = *d.Enabled
	}

	return &domain.Advertisement{
		Name:        d.Name,
		Type:        adType,
		Format:      d.Format,
		Position:    position,
		ContainerID: d.ContainerID,
		ZIndex:      d.ZIndex,
		Content: domain.NewContent(adType, domain.ContentFields{
			Title:     d.Title,
			Body:      d.Description,
			ImageURL:  d.ImageURL,
			VideoURL:  d.VideoURL,
			PosterURL: d.PosterURL,
			LinkURL:   d.TargetURL,
			AltText:   d.AltText,
			HTML:      d.HTML,
			CSS:       d.CSS,
			JS:        d.JS,
			Script:    d.AdCode,
			Network:   d.Network,
		}),
		Targeting: domain.Targeting{
			Pages:             d.Pages,
			ExcludedPages:     d.ExcludedPages,
			Devices:           d.Devices,
			Countries:         d.Countries,
			TargetEntity:      d.TargetEntity,
			TargetAllEntities: d.TargetAllEntities,
		},
		Schedule: domain.Schedule{
			StartDate: start,
			EndDate:   end,
			Days:      d.Days,
			Hours:     d.Hours,
		},
		Priority:       d.Priority,
		MaxImpressions: d.MaxImpressions,
		MaxClicks:      d.MaxClicks,
		Enabled:        enabled,
		Paused:         d.Paused,
	}, nil
}

// parseDate accepts RFC 3339 timestamps or plain dates (midnight UTC).
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("expected RFC 3339 or YYYY-MM-DD, got %q", s)
	}
	return &t, nil
}
