package domain

// AdContent is the closed set of creative payloads. Every variant implements
// Accept, and ContentVisitor has one method per variant, so a new variant
// cannot be added without every visitor (renderer included) handling it.
type AdContent interface {
	Accept(v ContentVisitor)
	isAdContent()
}

type ContentVisitor interface {
	VisitText(c *TextAd)
	VisitImage(c *ImageAd)
	VisitVideo(c *VideoAd)
	VisitHTML(c *HTMLAd)
	VisitScript(c *ScriptAd)
	VisitUnsupported(c *UnsupportedAd)
}

type TextAd struct {
	Title   string
	Body    string
	LinkURL string
}

type ImageAd struct {
	ImageURL string
	AltText  string
	Caption  string
	LinkURL  string
	Banner   bool
}

type VideoAd struct {
	VideoURL  string
	PosterURL string
	Title     string
	LinkURL   string
}

type HTMLAd struct {
	HTML string
	CSS  string
	JS   string
}

// ScriptAd is a third-party network tag (AdSense and friends).
type ScriptAd struct {
	Network string
	Script  string
}

type UnsupportedAd struct {
	Type string
}

func (c *TextAd) Accept(v ContentVisitor)        { v.VisitText(c) }
func (c *ImageAd) Accept(v ContentVisitor)       { v.VisitImage(c) }
func (c *VideoAd) Accept(v ContentVisitor)       { v.VisitVideo(c) }
func (c *HTMLAd) Accept(v ContentVisitor)        { v.VisitHTML(c) }
func (c *ScriptAd) Accept(v ContentVisitor)      { v.VisitScript(c) }
func (c *UnsupportedAd) Accept(v ContentVisitor) { v.VisitUnsupported(c) }

func (*TextAd) isAdContent()        {}
func (*ImageAd) isAdContent()       {}
func (*VideoAd) isAdContent()       {}
func (*HTMLAd) isAdContent()        {}
func (*ScriptAd) isAdContent()      {}
func (*UnsupportedAd) isAdContent() {}

// ContentFields is the flat column form of a creative, as stored in the
// advertisements table and exposed over JSON.
type ContentFields struct {
	Title     string `json:"title,omitempty"`
	Body      string `json:"description,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	VideoURL  string `json:"video_url,omitempty"`
	PosterURL string `json:"poster_url,omitempty"`
	LinkURL   string `json:"target_url,omitempty"`
	AltText   string `json:"alt_text,omitempty"`
	HTML      string `json:"html_code,omitempty"`
	CSS       string `json:"css_code,omitempty"`
	JS        string `json:"js_code,omitempty"`
	Script    string `json:"ad_code,omitempty"`
	Network   string `json:"network,omitempty"`
}

// NewContent builds the variant matching adType. Unknown types map to
// UnsupportedAd so they stay visible instead of disappearing.
func NewContent(adType AdType, f ContentFields) AdContent {
	switch adType {
	case AdTypeText:
		return &TextAd{Title: f.Title, Body: f.Body, LinkURL: f.LinkURL}
	case AdTypeImage, AdTypeBanner:
		return &ImageAd{
			ImageURL: f.ImageURL,
			AltText:  f.AltText,
			Caption:  f.Body,
			LinkURL:  f.LinkURL,
			Banner:   adType == AdTypeBanner,
		}
	case AdTypeVideo:
		return &VideoAd{VideoURL: f.VideoURL, PosterURL: f.PosterURL, Title: f.Title, LinkURL: f.LinkURL}
	case AdTypeHTML:
		return &HTMLAd{HTML: f.HTML, CSS: f.CSS, JS: f.JS}
	case AdTypeAdSense:
		network := f.Network
		if network == "" {
			network = "adsense"
		}
		return &ScriptAd{Network: network, Script: f.Script}
	default:
		return &UnsupportedAd{Type: string(adType)}
	}
}

// FieldsOf flattens a content variant back to its column form.
func FieldsOf(c AdContent) ContentFields {
	if c == nil {
		return ContentFields{}
	}
	var fc fieldsCollector
	c.Accept(&fc)
	return fc.fields
}

type fieldsCollector struct {
	fields ContentFields
}

func (f *fieldsCollector) VisitText(c *TextAd) {
	f.fields = ContentFields{Title: c.Title, Body: c.Body, LinkURL: c.LinkURL}
}

func (f *fieldsCollector) VisitImage(c *ImageAd) {
	f.fields = ContentFields{ImageURL: c.ImageURL, AltText: c.AltText, Body: c.Caption, LinkURL: c.LinkURL}
}

func (f *fieldsCollector) VisitVideo(c *VideoAd) {
	f.fields = ContentFields{VideoURL: c.VideoURL, PosterURL: c.PosterURL, Title: c.Title, LinkURL: c.LinkURL}
}

func (f *fieldsCollector) VisitHTML(c *HTMLAd) {
	f.fields = ContentFields{HTML: c.HTML, CSS: c.CSS, JS: c.JS}
}

func (f *fieldsCollector) VisitScript(c *ScriptAd) {
	f.fields = ContentFields{Script: c.Script, Network: c.Network}
}

func (f *fieldsCollector) VisitUnsupported(*UnsupportedAd) {
	f.fields = ContentFields{}
}
