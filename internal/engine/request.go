package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/studyreport/internal/learning"
)

// GenerateRequest is the input of GenerateReport.
type GenerateRequest struct {
	UserID       string `json:"userId" validate:"required,max=128"`
	Category     string `json:"category" validate:"max=64"`
	Score        int    `json:"score" validate:"gte=0,ltefield=Total"`
	Total        int    `json:"total" validate:"gt=0,lte=1000"`
	WrongIndices []int  `json:"wrongIndices" validate:"unique,dive,gte=0"`

	// Sequence is the test number within the category; 0 means "next".
	Sequence int `json:"testCount" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the cross-field rules the struct
// tags cannot express.
func (r *GenerateRequest) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Category = learning.NormalizeCategory(r.Category)

	if err := validate.Struct(r); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return &ValidationError{Field: fe.Field(), Reason: reason(fe), Err: err}
		}
		return &ValidationError{Field: "request", Reason: err.Error(), Err: err}
	}
	for _, idx := range r.WrongIndices {
		if idx >= r.Total {
			return &ValidationError{Field: "WrongIndices", Reason: fmt.Sprintf("index %d is not below total %d", idx, r.Total)}
		}
	}
	if len(r.WrongIndices) > r.Total-r.Score {
		return &ValidationError{
			Field:  "WrongIndices",
			Reason: fmt.Sprintf("%d wrong answers but only %d questions were missed", len(r.WrongIndices), r.Total-r.Score),
		}
	}
	return nil
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "ltefield":
		return "must not exceed " + fe.Param()
	case "unique":
		return "must not contain duplicates"
	case "gte":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
