package models

// MarkerType classifies a point of interest on the master-plan map.
type MarkerType string

const (
	MarkerStudio   MarkerType = "studio"
	MarkerStandard MarkerType = "standard"
	MarkerPod      MarkerType = "pod"
	MarkerExisting MarkerType = "existing"
)

// Valid reports whether t is one of the known marker types.
func (t MarkerType) Valid() bool {
	switch t {
	case MarkerStudio, MarkerStandard, MarkerPod, MarkerExisting:
		return true
	}
	return false
}

// CalloutColor selects which brand color a map callout card is rendered with.
type CalloutColor string

const (
	CalloutPrimary   CalloutColor = "primary"
	CalloutSecondary CalloutColor = "secondary"
	CalloutPod       CalloutColor = "pod"
)

// Valid reports whether c is one of the known callout colors.
func (c CalloutColor) Valid() bool {
	switch c {
	case CalloutPrimary, CalloutSecondary, CalloutPod:
		return true
	}
	return false
}

// Leader is a civic leader shown in the leadership section.
type Leader struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Image string `json:"image"`
}

// MapMarker is a point of interest on the master-plan map.
// X and Y are percentage coordinates in [0,100] relative to the map surface.
type MapMarker struct {
	ID   string     `json:"id"`
	X    float64    `json:"x"`
	Y    float64    `json:"y"`
	Name string     `json:"name"`
	Type MarkerType `json:"type"`
}

// MapCallout is a descriptive card anchored to the master-plan map.
// MarkerType pairs the callout to markers of that type explicitly; the
// previous generation of the editor inferred the pairing from title
// substrings, which broke silently when a callout was renamed.
type MapCallout struct {
	ID         string       `json:"id"`
	X          float64      `json:"x"`
	Y          float64      `json:"y"`
	Title      string       `json:"title"`
	Image      string       `json:"image"`
	ColorType  CalloutColor `json:"colorType"`
	MarkerType MarkerType   `json:"markerType"`
}

// CityTemplate holds the default content and branding a city provides to all
// of its sponsor pages absent an override.
type CityTemplate struct {
	ProjectName          string       `json:"projectName"`
	CityLogo             string       `json:"cityLogo"`
	NFCLogo              string       `json:"nfcLogo"`
	PrimaryColor         string       `json:"primaryColor"`
	AccentColor          string       `json:"accentColor"`
	SecondaryColor       string       `json:"secondaryColor"`
	InvestmentAmount     string       `json:"investmentAmount"`
	CourtCount           string       `json:"courtCount"`
	WardCount            string       `json:"wardCount"`
	WardType             string       `json:"wardType"`
	WardNames            []string     `json:"wardNames"`
	HeroVideo            string       `json:"heroVideo"`
	SecondaryVideo       string       `json:"secondaryVideo"`
	MasterPlanBackground string       `json:"masterPlanBackground"`
	SponsorRender        string       `json:"sponsorRender"`
	Leaders              []Leader     `json:"leaders"`
	EndorsementQuote     string       `json:"endorsementQuote"`
	EndorsementName      string       `json:"endorsementName"`
	EndorsementImage     string       `json:"endorsementImage"`
	Markers              []MapMarker  `json:"markers"`
	Callouts             []MapCallout `json:"callouts"`
	CommunityAccess      string       `json:"communityAccess"`
	AnnualUses           string       `json:"annualUses"`
	CaloriesBurned       string       `json:"caloriesBurned"`
}

// Clone returns a deep copy of the template.
func (t CityTemplate) Clone() CityTemplate {
	out := t
	out.WardNames = cloneStrings(t.WardNames)
	out.Leaders = cloneLeaders(t.Leaders)
	out.Markers = cloneMarkers(t.Markers)
	out.Callouts = cloneCallouts(t.Callouts)
	return out
}

// SponsorRecord is a branded variant of a city's page. It stores the
// sponsor's identity plus only the fields its page differs from the city
// template in; a key's presence in Overrides is the sole signal that the
// field is sponsor-specific.
type SponsorRecord struct {
	ID              string    `json:"id"`
	SponsorName     string    `json:"sponsorName"`
	SponsorLogo     string    `json:"sponsorLogo"`
	SponsorPassword string    `json:"sponsorPassword,omitempty"`
	IsArchived      bool      `json:"isArchived,omitempty"`
	Overrides       Overrides `json:"overrides"`
}

// Clone returns a deep copy of the sponsor record.
func (s SponsorRecord) Clone() SponsorRecord {
	out := s
	out.Overrides = s.Overrides.Clone()
	return out
}

// CityGroup is the aggregate root: one city, its template, and its sponsors.
// CityGroup IDs are globally unique; sponsor IDs are unique within a group.
type CityGroup struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	IsArchived bool            `json:"isArchived,omitempty"`
	Template   CityTemplate    `json:"template"`
	Sponsors   []SponsorRecord `json:"sponsors"`
}

// Clone returns a deep copy of the city group.
func (c CityGroup) Clone() CityGroup {
	out := c
	out.Template = c.Template.Clone()
	if c.Sponsors != nil {
		out.Sponsors = make([]SponsorRecord, len(c.Sponsors))
		for i, s := range c.Sponsors {
			out.Sponsors[i] = s.Clone()
		}
	}
	return out
}

// SponsorByID returns the sponsor with the given id, or nil if absent.
func (c *CityGroup) SponsorByID(id string) *SponsorRecord {
	for i := range c.Sponsors {
		if c.Sponsors[i].ID == id {
			return &c.Sponsors[i]
		}
	}
	return nil
}

// SiteConfig is the fully resolved, render-ready configuration for one
// sponsor page. It is never persisted; it is always recomputed by Merge.
type SiteConfig struct {
	ID                   string       `json:"id"`
	ProjectName          string       `json:"projectName"`
	ProjectCity          string       `json:"projectCity"`
	CityLogo             string       `json:"cityLogo"`
	SponsorName          string       `json:"sponsorName"`
	SponsorLogo          string       `json:"sponsorLogo"`
	SponsorPassword      string       `json:"sponsorPassword,omitempty"`
	SponsorRender        string       `json:"sponsorRender"`
	NFCLogo              string       `json:"nfcLogo"`
	PrimaryColor         string       `json:"primaryColor"`
	AccentColor          string       `json:"accentColor"`
	SecondaryColor       string       `json:"secondaryColor"`
	InvestmentAmount     string       `json:"investmentAmount"`
	CourtCount           string       `json:"courtCount"`
	WardCount            string       `json:"wardCount"`
	WardType             string       `json:"wardType"`
	WardNames            []string     `json:"wardNames"`
	HeroVideo            string       `json:"heroVideo"`
	SecondaryVideo       string       `json:"secondaryVideo"`
	MasterPlanBackground string       `json:"masterPlanBackground"`
	IsArchived           bool         `json:"isArchived,omitempty"`
	Leaders              []Leader     `json:"leaders"`
	EndorsementQuote     string       `json:"endorsementQuote"`
	EndorsementName      string       `json:"endorsementName"`
	EndorsementImage     string       `json:"endorsementImage"`
	Markers              []MapMarker  `json:"markers"`
	Callouts             []MapCallout `json:"callouts"`
	CommunityAccess      string       `json:"communityAccess"`
	AnnualUses           string       `json:"annualUses"`
	CaloriesBurned       string       `json:"caloriesBurned"`
}

// CalloutForMarker returns the callout paired to the given marker type via
// the explicit MarkerType field. Markers of type "existing" never pair.
func CalloutForMarker(callouts []MapCallout, markerType MarkerType) *MapCallout {
	if markerType == MarkerExisting {
		return nil
	}
	for i := range callouts {
		if callouts[i].MarkerType == markerType {
			return &callouts[i]
		}
	}
	return nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneLeaders(in []Leader) []Leader {
	if in == nil {
		return nil
	}
	out := make([]Leader, len(in))
	copy(out, in)
	return out
}

func cloneMarkers(in []MapMarker) []MapMarker {
	if in == nil {
		return nil
	}
	out := make([]MapMarker, len(in))
	copy(out, in)
	return out
}

func cloneCallouts(in []MapCallout) []MapCallout {
	if in == nil {
		return nil
	}
	out := make([]MapCallout, len(in))
	copy(out, in)
	return out
}
