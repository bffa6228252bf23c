package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"forecast-compare/internal/api/models"
	"forecast-compare/internal/compare"
	"forecast-compare/internal/schema"
)

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// parseDate parses an optional YYYY-MM-DD query value.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be in YYYY-MM-DD format", field)
	}
	return t, nil
}

// buildQuery turns request values into an engine query. An empty type
// selects wind.
func buildQuery(provider, tag, zone, start, end, typ string, powerHour int) (compare.Query, error) {
	startDate, err := parseDate("start_date", start)
	if err != nil {
		return compare.Query{}, err
	}
	endDate, err := parseDate("end_date", end)
	if err != nil {
		return compare.Query{}, err
	}
	if typ == "" {
		typ = schema.WindCol
	}
	return compare.Query{
		Provider:   provider,
		Tag:        tag,
		Zone:       zone,
		StartDate:  startDate,
		EndDate:    endDate,
		Production: typ,
		PowerHour:  powerHour,
	}, nil
}
