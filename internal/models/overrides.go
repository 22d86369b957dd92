package models

import (
	"encoding/json"
	"fmt"
)

// FieldKey names one overridable CityTemplate field. The set of keys is
// closed: a sponsor override map may only carry keys listed here, so a
// malformed or stale key is rejected when the record is decoded instead of
// silently riding along in a free-form object.
type FieldKey string

const (
	FieldProjectName          FieldKey = "projectName"
	FieldCityLogo             FieldKey = "cityLogo"
	FieldNFCLogo              FieldKey = "nfcLogo"
	FieldPrimaryColor         FieldKey = "primaryColor"
	FieldAccentColor          FieldKey = "accentColor"
	FieldSecondaryColor       FieldKey = "secondaryColor"
	FieldInvestmentAmount     FieldKey = "investmentAmount"
	FieldCourtCount           FieldKey = "courtCount"
	FieldWardCount            FieldKey = "wardCount"
	FieldWardType             FieldKey = "wardType"
	FieldWardNames            FieldKey = "wardNames"
	FieldHeroVideo            FieldKey = "heroVideo"
	FieldSecondaryVideo       FieldKey = "secondaryVideo"
	FieldMasterPlanBackground FieldKey = "masterPlanBackground"
	FieldSponsorRender        FieldKey = "sponsorRender"
	FieldLeaders              FieldKey = "leaders"
	FieldEndorsementQuote     FieldKey = "endorsementQuote"
	FieldEndorsementName      FieldKey = "endorsementName"
	FieldEndorsementImage     FieldKey = "endorsementImage"
	FieldMarkers              FieldKey = "markers"
	FieldCallouts             FieldKey = "callouts"
	FieldCommunityAccess      FieldKey = "communityAccess"
	FieldAnnualUses           FieldKey = "annualUses"
	FieldCaloriesBurned       FieldKey = "caloriesBurned"
)

// FieldKeys lists every overridable field in declaration order.
func FieldKeys() []FieldKey {
	return []FieldKey{
		FieldProjectName, FieldCityLogo, FieldNFCLogo,
		FieldPrimaryColor, FieldAccentColor, FieldSecondaryColor,
		FieldInvestmentAmount, FieldCourtCount,
		FieldWardCount, FieldWardType, FieldWardNames,
		FieldHeroVideo, FieldSecondaryVideo, FieldMasterPlanBackground,
		FieldSponsorRender, FieldLeaders,
		FieldEndorsementQuote, FieldEndorsementName, FieldEndorsementImage,
		FieldMarkers, FieldCallouts,
		FieldCommunityAccess, FieldAnnualUses, FieldCaloriesBurned,
	}
}

// Valid reports whether k is one of the overridable field keys.
func (k FieldKey) Valid() bool {
	switch k {
	case FieldProjectName, FieldCityLogo, FieldNFCLogo,
		FieldPrimaryColor, FieldAccentColor, FieldSecondaryColor,
		FieldInvestmentAmount, FieldCourtCount,
		FieldWardCount, FieldWardType, FieldWardNames,
		FieldHeroVideo, FieldSecondaryVideo, FieldMasterPlanBackground,
		FieldSponsorRender, FieldLeaders,
		FieldEndorsementQuote, FieldEndorsementName, FieldEndorsementImage,
		FieldMarkers, FieldCallouts,
		FieldCommunityAccess, FieldAnnualUses, FieldCaloriesBurned:
		return true
	}
	return false
}

// Overrides is a partial CityTemplate keyed by the closed set of overridable
// fields. A key's presence means the sponsor customizes that field; its
// absence means the field inherits the template. Values are the same Go
// types as the corresponding CityTemplate fields.
type Overrides map[FieldKey]any

// DecodeFieldValue decodes a raw JSON value into the Go type the given field
// carries. Unknown keys and wrong-shaped values return an error.
func DecodeFieldValue(key FieldKey, raw json.RawMessage) (any, error) {
	switch key {
	case FieldWardNames:
		var v []string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		return v, nil
	case FieldLeaders:
		var v []Leader
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		return v, nil
	case FieldMarkers:
		var v []MapMarker
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		return v, nil
	case FieldCallouts:
		var v []MapCallout
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		return v, nil
	}

	if !key.Valid() {
		return nil, fmt.Errorf("unknown override field %q", key)
	}

	// Every remaining overridable field is a plain string.
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	return v, nil
}

// UnmarshalJSON decodes an override object, validating each key against the
// closed field set and decoding each value into its typed form.
func (o *Overrides) UnmarshalJSON(data []byte) error {
	var raw map[FieldKey]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Overrides, len(raw))
	for key, val := range raw {
		decoded, err := DecodeFieldValue(key, val)
		if err != nil {
			return err
		}
		out[key] = decoded
	}
	*o = out
	return nil
}

// Clone returns a deep copy of the override map.
func (o Overrides) Clone() Overrides {
	if o == nil {
		return nil
	}
	out := make(Overrides, len(o))
	for key, val := range o {
		switch v := val.(type) {
		case []string:
			out[key] = cloneStrings(v)
		case []Leader:
			out[key] = cloneLeaders(v)
		case []MapMarker:
			out[key] = cloneMarkers(v)
		case []MapCallout:
			out[key] = cloneCallouts(v)
		default:
			out[key] = val
		}
	}
	return out
}

// TemplateValue returns the template's current value for the given field.
func TemplateValue(t *CityTemplate, key FieldKey) any {
	switch key {
	case FieldProjectName:
		return t.ProjectName
	case FieldCityLogo:
		return t.CityLogo
	case FieldNFCLogo:
		return t.NFCLogo
	case FieldPrimaryColor:
		return t.PrimaryColor
	case FieldAccentColor:
		return t.AccentColor
	case FieldSecondaryColor:
		return t.SecondaryColor
	case FieldInvestmentAmount:
		return t.InvestmentAmount
	case FieldCourtCount:
		return t.CourtCount
	case FieldWardCount:
		return t.WardCount
	case FieldWardType:
		return t.WardType
	case FieldWardNames:
		return t.WardNames
	case FieldHeroVideo:
		return t.HeroVideo
	case FieldSecondaryVideo:
		return t.SecondaryVideo
	case FieldMasterPlanBackground:
		return t.MasterPlanBackground
	case FieldSponsorRender:
		return t.SponsorRender
	case FieldLeaders:
		return t.Leaders
	case FieldEndorsementQuote:
		return t.EndorsementQuote
	case FieldEndorsementName:
		return t.EndorsementName
	case FieldEndorsementImage:
		return t.EndorsementImage
	case FieldMarkers:
		return t.Markers
	case FieldCallouts:
		return t.Callouts
	case FieldCommunityAccess:
		return t.CommunityAccess
	case FieldAnnualUses:
		return t.AnnualUses
	case FieldCaloriesBurned:
		return t.CaloriesBurned
	}
	return nil
}

// SetTemplateValue writes a typed value into the template field named by key.
// The value must already be the field's Go type (see DecodeFieldValue).
func SetTemplateValue(t *CityTemplate, key FieldKey, value any) error {
	switch key {
	case FieldWardNames:
		v, ok := value.([]string)
		if !ok {
			return fmt.Errorf("field %q expects []string, got %T", key, value)
		}
		t.WardNames = v
		return nil
	case FieldLeaders:
		v, ok := value.([]Leader)
		if !ok {
			return fmt.Errorf("field %q expects []Leader, got %T", key, value)
		}
		t.Leaders = v
		return nil
	case FieldMarkers:
		v, ok := value.([]MapMarker)
		if !ok {
			return fmt.Errorf("field %q expects []MapMarker, got %T", key, value)
		}
		t.Markers = v
		return nil
	case FieldCallouts:
		v, ok := value.([]MapCallout)
		if !ok {
			return fmt.Errorf("field %q expects []MapCallout, got %T", key, value)
		}
		t.Callouts = v
		return nil
	}

	if !key.Valid() {
		return fmt.Errorf("unknown override field %q", key)
	}

	v, ok := value.(string)
	if !ok {
		return fmt.Errorf("field %q expects string, got %T", key, value)
	}

	switch key {
	case FieldProjectName:
		t.ProjectName = v
	case FieldCityLogo:
		t.CityLogo = v
	case FieldNFCLogo:
		t.NFCLogo = v
	case FieldPrimaryColor:
		t.PrimaryColor = v
	case FieldAccentColor:
		t.AccentColor = v
	case FieldSecondaryColor:
		t.SecondaryColor = v
	case FieldInvestmentAmount:
		t.InvestmentAmount = v
	case FieldCourtCount:
		t.CourtCount = v
	case FieldWardCount:
		t.WardCount = v
	case FieldWardType:
		t.WardType = v
	case FieldHeroVideo:
		t.HeroVideo = v
	case FieldSecondaryVideo:
		t.SecondaryVideo = v
	case FieldMasterPlanBackground:
		t.MasterPlanBackground = v
	case FieldSponsorRender:
		t.SponsorRender = v
	case FieldEndorsementQuote:
		t.EndorsementQuote = v
	case FieldEndorsementName:
		t.EndorsementName = v
	case FieldEndorsementImage:
		t.EndorsementImage = v
	case FieldCommunityAccess:
		t.CommunityAccess = v
	case FieldAnnualUses:
		t.AnnualUses = v
	case FieldCaloriesBurned:
		t.CaloriesBurned = v
	}
	return nil
}
