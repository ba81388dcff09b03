package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-zone-analytics/internal/models"
	appErrors "github.com/noah-isme/sma-zone-analytics/pkg/errors"
)

func ensureValidator(v *validator.Validate) *validator.Validate {
	if v == nil {
		return validator.New()
	}
	return v
}

func validateStruct(v *validator.Validate, payload interface{}) error {
	if err := v.Struct(payload); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	return nil
}

func bindJSON(c *gin.Context, v *validator.Validate, payload interface{}) error {
	if err := c.ShouldBindJSON(payload); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body")
	}
	return validateStruct(v, payload)
}

// normalizePlacement canonicalises loosely typed campus, grade and zone query
// values ("girls", "11", "GREEN") before validation. Unknown values are left
// as given so validation reports them.
func normalizePlacement(campus *models.Campus, grade *string, zone *models.Zone) {
	if campus != nil && *campus != "" {
		if parsed, ok := models.ParseCampus(string(*campus)); ok {
			*campus = parsed
		}
	}
	if grade != nil && *grade != "" {
		if parsed, ok := models.ParseGrade(*grade); ok {
			*grade = parsed
		}
	}
	if zone != nil && *zone != "" {
		if parsed, ok := models.ParseZone(string(*zone)); ok {
			*zone = parsed
		}
	}
}
