package models

// CompareRequest selects one provider's forecast-vs-actual comparison.
type CompareRequest struct {
	Provider    string `form:"provider" binding:"required"`
	Tag         string `form:"tag"`
	Zone        string `form:"zone"`
	StartDate   string `form:"start_date"` // YYYY-MM-DD, market zone
	EndDate     string `form:"end_date"`   // YYYY-MM-DD, market zone
	Type        string `form:"type"`       // default: wind
	PowerHour   int    `form:"power_hour"` // 0 = all hours
	IncludeRows bool   `form:"include_rows"`
}

// RankRequest ranks every provider on the same selection.
type RankRequest struct {
	Zone      string `form:"zone"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Type      string `form:"type"`
	PowerHour int    `form:"power_hour"`
}
