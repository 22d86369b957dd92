package store

import "github.com/NFC-FC/sponsorship-hub-wiz/internal/models"

// Default assets shared by the bundled dataset.
const (
	nfcShieldURL    = "https://github.com/NFC-FC/NFC-image-hosting/blob/main/01-Main-Shield.png?raw=true"
	defaultVideoURL = "https://cdn.prod.website-files.com/638a20d9b98c2f709f1402cb/63efc95f26ac7b6b0e192a29_V14%20(1920%20%C3%97%20650%20px)-transcode.mp4"
)

// SeedCities returns the bundled Las Vegas launch dataset. The catalog falls
// back to it when the store is empty or unreachable at startup, so a fresh
// deployment always has a working site to show.
func SeedCities() []models.CityGroup {
	return []models.CityGroup{
		{
			ID:   "city-vegas",
			Name: "LAS VEGAS",
			Template: models.CityTemplate{
				ProjectName:          "National Wellness Innovation",
				CityLogo:             "https://github.com/NFC-FC/NFC-image-hosting/blob/main/Seal_of_Las_Vegas,_Nevada.svg.png?raw=true",
				NFCLogo:              nfcShieldURL,
				PrimaryColor:         "#009cdc",
				AccentColor:          "#FF5432",
				SecondaryColor:       "#FBAB18",
				InvestmentAmount:     "$6 MILLION",
				CourtCount:           "30+",
				WardCount:            "6",
				WardType:             "Wards",
				WardNames:            []string{"Shelley Berkley", "Brian Knudsen", "Victoria Seaman", "Olivia Diaz", "Cedric Crear", "Nancy Brune"},
				HeroVideo:            defaultVideoURL,
				SecondaryVideo:       defaultVideoURL,
				MasterPlanBackground: "https://github.com/NFC-FC/NFC-image-hosting/blob/04b9dee17b734ea8e2b55df7ce56a6ef817d0b01/vegas-MP.png?raw=true",
				SponsorRender:        "https://nationalfitnesscampaign.com/wp-content/uploads/2023/06/LV_ALLEGIANT_RENDER_HQ.png",
				Markers: []models.MapMarker{
					{ID: "m1", X: 50, Y: 45, Name: "Downtown Wellness Hub", Type: models.MarkerStudio},
					{ID: "m2", X: 25, Y: 35, Name: "Summerlin North Park", Type: models.MarkerStandard},
					{ID: "m3", X: 75, Y: 60, Name: "Henderson Gateway", Type: models.MarkerPod},
					{ID: "m4", X: 60, Y: 30, Name: "Sunrise Mountain Trail", Type: models.MarkerPod},
					{ID: "m5", X: 40, Y: 70, Name: "St. Rose Parkway Site", Type: models.MarkerExisting},
					{ID: "m6", X: 30, Y: 55, Name: "Spring Valley Central", Type: models.MarkerStandard},
					{ID: "m7", X: 65, Y: 20, Name: "North Las Vegas Station", Type: models.MarkerStandard},
					{ID: "m8", X: 45, Y: 15, Name: "Centennial Hills Park", Type: models.MarkerExisting},
				},
				Callouts: []models.MapCallout{
					{ID: "c1", X: 88, Y: 28, Title: "FITNESS COURT STUDIO", Image: "https://github.com/NFC-FC/NFC-image-hosting/blob/main/FC_Studio.png?raw=true", ColorType: models.CalloutPrimary, MarkerType: models.MarkerStudio},
					{ID: "c2", X: 95, Y: 58, Title: "FITNESS COURT", Image: "https://github.com/NFC-FC/NFC-image-hosting/blob/main/FC.png?raw=true", ColorType: models.CalloutSecondary, MarkerType: models.MarkerStandard},
					{ID: "c3", X: 10, Y: 85, Title: "FITNESS COURT POD", Image: "https://github.com/NFC-FC/NFC-image-hosting/blob/main/FC-Pod.png?raw=true", ColorType: models.CalloutPod, MarkerType: models.MarkerPod},
				},
				Leaders: []models.Leader{
					{ID: "l1", Name: "Shelley Berkley", Title: "Mayor, City of Las Vegas", Image: "https://www.sandiego.edu/uploads/7d8423fa1a9c1c212c60e6bfa1863092.jpg?raw=true"},
					{ID: "l2", Name: "Brian Knudsen", Title: "Mayor Pro Tem", Image: "https://sawebfilesprod001.blob.core.windows.net/images/Knudsen-Headshot.jpg?raw=true"},
					{ID: "l3", Name: "Maggie Plaster", Title: "Parks & Rec Director", Image: "https://github.com/NFC-FC/NFC-image-hosting/blob/04b9dee17b734ea8e2b55df7ce56a6ef817d0b01/maggie%20headshot.jpeg?raw=true"},
					{ID: "l4", Name: "Sallie Doebler", Title: "CEO, Mayors Fund", Image: "https://businesspress.vegas/wp-content/uploads/2018/03/10214386_web1_sallie-doebler-head-shot.jpg?raw=true"},
					{ID: "l5", Name: "Mitch Menaged", Title: "NFC Founder", Image: "https://assets.isu.pub/document-structure/230124185444-17c24fe7983cafa14389e16ccecb4dde/v1/39e8f199c13a4857b5b7372d691432b0.jpeg?raw=true"},
				},
				EndorsementQuote: `"Our partnership marks a pivotal turning point for the health of our city. This isn't just about a gym; it's about democratizing wellness and building a more resilient, connected Las Vegas for generations to come."`,
				EndorsementName:  "OFFICE OF THE MAYOR",
				EndorsementImage: "https://github.com/NFC-FC/NFC-image-hosting/blob/main/Las_Vegas_Mayor_Shelley_Berkley_app_June-23-2025-600x800.jpg?raw=true",
				CommunityAccess:  "650k+",
				AnnualUses:       "250k+",
				CaloriesBurned:   "25M+",
			},
			Sponsors: []models.SponsorRecord{
				{
					ID:              "default-vegas",
					SponsorName:     "Allegiant Air",
					SponsorLogo:     "https://github.com/NFC-FC/NFC-image-hosting/blob/main/Allegiant_Air_logo.svg.png?raw=true",
					SponsorPassword: "vegas-allegiant-2026",
					Overrides:       models.Overrides{},
				},
				{
					ID:              "vegas-dignity",
					SponsorName:     "Dignity Health",
					SponsorLogo:     "https://upload.wikimedia.org/wikipedia/commons/e/e5/Dignity_Health_logo.svg",
					SponsorPassword: "vegas-dignity-2026",
					Overrides: models.Overrides{
						models.FieldProjectName:      "VIBRANT",
						models.FieldPrimaryColor:     "#0072ce",
						models.FieldInvestmentAmount: "$4 MILLION",
						models.FieldCourtCount:       "20+",
					},
				},
			},
		},
	}
}
