package models

// Merge computes the render-ready SiteConfig for one sponsor page.
//
// Precedence is fixed: city template defaults, then the sponsor's override
// map, then the sponsor's identity fields, which always win regardless of
// what the override map carries. The sponsor does not need to belong to
// city.Sponsors; the edit session calls Merge with draft records for live
// preview before anything is committed.
//
// Merge is pure and deterministic, safe to call on every keystroke.
func Merge(city CityGroup, sponsor SponsorRecord) SiteConfig {
	resolved := city.Template.Clone()
	for key, value := range sponsor.Overrides {
		// Keys are validated when overrides are decoded, and values carry
		// the field's Go type, so a set failure here is impossible.
		_ = SetTemplateValue(&resolved, key, value)
	}

	return SiteConfig{
		ID:                   sponsor.ID,
		ProjectName:          resolved.ProjectName,
		ProjectCity:          city.Name,
		CityLogo:             resolved.CityLogo,
		SponsorName:          sponsor.SponsorName,
		SponsorLogo:          sponsor.SponsorLogo,
		SponsorPassword:      sponsor.SponsorPassword,
		SponsorRender:        resolved.SponsorRender,
		NFCLogo:              resolved.NFCLogo,
		PrimaryColor:         resolved.PrimaryColor,
		AccentColor:          resolved.AccentColor,
		SecondaryColor:       resolved.SecondaryColor,
		InvestmentAmount:     resolved.InvestmentAmount,
		CourtCount:           resolved.CourtCount,
		WardCount:            resolved.WardCount,
		WardType:             resolved.WardType,
		WardNames:            resolved.WardNames,
		HeroVideo:            resolved.HeroVideo,
		SecondaryVideo:       resolved.SecondaryVideo,
		MasterPlanBackground: resolved.MasterPlanBackground,
		IsArchived:           sponsor.IsArchived || city.IsArchived,
		Leaders:              resolved.Leaders,
		EndorsementQuote:     resolved.EndorsementQuote,
		EndorsementName:      resolved.EndorsementName,
		EndorsementImage:     resolved.EndorsementImage,
		Markers:              resolved.Markers,
		Callouts:             resolved.Callouts,
		CommunityAccess:      resolved.CommunityAccess,
		AnnualUses:           resolved.AnnualUses,
		CaloriesBurned:       resolved.CaloriesBurned,
	}
}
