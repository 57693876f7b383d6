// Package render turns advertisements into HTML units for a host page.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
	"github.com/techno-flashi/techno-flashi-sub000/internal/logger"
)

// Unit is one rendered advertisement.
type Unit struct {
	AdID        uuid.UUID       `json:"ad_id"`
	Position    domain.Position `json:"position"`
	ContainerID string          `json:"container_id"`
	Type        domain.AdType   `json:"type"`
	Placeholder bool            `json:"placeholder"`
	HTML        template.HTML   `json:"html"`
}

// Renderer builds units. Links inside a unit point at the click endpoint so
// the click is recorded before the visitor leaves.
type Renderer struct {
	baseURL string
}

// New returns a renderer whose tracking URLs are rooted at baseURL. An empty
// baseURL yields host-relative URLs.
func New(baseURL string) *Renderer {
	return &Renderer{baseURL: strings.TrimRight(baseURL, "/")}
}

func (r *Renderer) ClickURL(id uuid.UUID) string {
	return fmt.Sprintf("%s/api/ads/%s/click", r.baseURL, id)
}

func (r *Renderer) EventsURL(id uuid.UUID) string {
	return fmt.Sprintf("%s/api/ads/%s/events", r.baseURL, id)
}

// Render never fails. Unknown types and content missing a required field
// come back as a visible placeholder unit.
func (r *Renderer) Render(ad *domain.Advertisement) Unit {
	u := &unitBuilder{
		r: r,
		data: unitData{
			ID:          ad.ID.String(),
			Position:    ad.Position,
			ContainerID: containerID(ad),
			ZIndex:      ad.ZIndex,
		},
	}

	if ad.Content == nil {
		u.placeholder("Ad content unavailable")
	} else {
		u.adID = ad.ID
		ad.Content.Accept(u)
	}

	out, err := u.execute()
	if err != nil {
		logger.Get().Error("Failed to render ad",
			slog.String("ad_id", ad.ID.String()),
			slog.String("error", err.Error()),
		)
		u.placeholder("Ad content unavailable")
		out, _ = u.execute()
	}

	return Unit{
		AdID:        ad.ID,
		Position:    ad.Position,
		ContainerID: u.data.ContainerID,
		Type:        ad.Type,
		Placeholder: u.name == "placeholder",
		HTML:        out,
	}
}

func (r *Renderer) RenderAll(ads []*domain.Advertisement) []Unit {
	units := make([]Unit, 0, len(ads))
	for _, ad := range ads {
		units = append(units, r.Render(ad))
	}
	return units
}

// Fragment joins units into one HTML fragment, in order.
func Fragment(units []Unit) template.HTML {
	var b strings.Builder
	for i, u := range units {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(u.HTML))
	}
	return template.HTML(b.String())
}

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

func containerID(ad *domain.Advertisement) string {
	if id := unsafeIDChars.ReplaceAllString(ad.ContainerID, ""); id != "" {
		return id
	}
	return fmt.Sprintf("ad-%s-%s", ad.Position, strings.ReplaceAll(ad.ID.String(), "-", "")[:12])
}

type unitData struct {
	ID          string
	Position    domain.Position
	ContainerID string
	ZIndex      int

	Title  string
	Body   string
	Link   string
	Media  string
	Poster string
	Alt    string
	Banner bool

	Markup    template.HTML
	CSS       template.CSS
	Script    string
	EventsURL string
	Network   string
}

// unitBuilder picks a template and its data for one content variant.
type unitBuilder struct {
	r    *Renderer
	adID uuid.UUID
	name string
	data unitData
}

func (u *unitBuilder) execute() (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, u.name, u.data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (u *unitBuilder) placeholder(msg string) {
	u.name = "placeholder"
	u.data.Title = msg
}

// link routes an outbound URL through the click endpoint, or drops it when
// it is not an absolute http(s) URL.
func (u *unitBuilder) link(target string) string {
	if !domain.IsHTTPURL(target) {
		return ""
	}
	return u.r.ClickURL(u.adID)
}

func (u *unitBuilder) VisitText(c *domain.TextAd) {
	if strings.TrimSpace(c.Title) == "" {
		u.placeholder("Ad content unavailable")
		return
	}
	u.name = "text"
	u.data.Title = c.Title
	u.data.Body = c.Body
	u.data.Link = u.link(c.LinkURL)
}

func (u *unitBuilder) VisitImage(c *domain.ImageAd) {
	if !domain.IsHTTPURL(c.ImageURL) {
		u.placeholder("Ad content unavailable")
		return
	}
	u.name = "image"
	u.data.Media = c.ImageURL
	u.data.Alt = c.AltText
	u.data.Body = c.Caption
	u.data.Banner = c.Banner
	u.data.Link = u.link(c.LinkURL)
}

func (u *unitBuilder) VisitVideo(c *domain.VideoAd) {
	if !domain.IsHTTPURL(c.VideoURL) {
		u.placeholder("Ad content unavailable")
		return
	}
	u.name = "video"
	u.data.Media = c.VideoURL
	if domain.IsHTTPURL(c.PosterURL) {
		u.data.Poster = c.PosterURL
	}
	u.data.Title = c.Title
	u.data.Link = u.link(c.LinkURL)
}

func (u *unitBuilder) VisitHTML(c *domain.HTMLAd) {
	markup := SanitizeHTML(c.HTML)
	if strings.TrimSpace(markup) == "" {
		u.placeholder("Ad content unavailable")
		return
	}
	u.name = "html"
	u.data.Markup = template.HTML(markup)
	if css := strings.TrimSpace(c.CSS); css != "" {
		u.data.CSS = template.CSS(ScopeCSS(SanitizeCSS(css), u.data.ContainerID))
	}
	u.data.EventsURL = u.r.EventsURL(u.adID)
	if js := strings.TrimSpace(c.JS); js != "" {
		u.data.Script = strictPrologue + js
	}
}

// Author JS runs as a strict function body, so a bare call leaves this
// undefined instead of the global object.
const strictPrologue = "\"use strict\";\n"

// VisitScript injects the network tag as authored. Network tags come from
// the ad operator, not from visitors.
func (u *unitBuilder) VisitScript(c *domain.ScriptAd) {
	if strings.TrimSpace(c.Script) == "" {
		u.placeholder("Ad content unavailable")
		return
	}
	u.name = "script"
	u.data.Network = c.Network
	u.data.Markup = template.HTML(c.Script)
}

func (u *unitBuilder) VisitUnsupported(c *domain.UnsupportedAd) {
	u.placeholder(fmt.Sprintf("Unsupported ad type: %s", c.Type))
}
