package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"vault-data-api/internal/timebucket"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("timebucket", func(fl validator.FieldLevel) bool {
		return timebucket.TimeBucket(fl.Field().String()).Valid()
	})
}

type oracleSeriesRequest struct {
	Oracle string `query:"oracle" validate:"required,max=255"`
	Bucket string `query:"bucket" default:"1h_1d" validate:"timebucket"`
}

type vaultSeriesRequest struct {
	Vault  string `query:"vault" validate:"required,max=255"`
	Bucket string `query:"bucket" default:"1h_1d" validate:"timebucket"`
}

type oracleTokensRequest struct {
	Oracle string `query:"oracle" validate:"required,max=255"`
}

// bindAndValidate binds query parameters, applies defaults and validates req.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	if err := defaults.Set(req); err != nil {
		return err
	}
	return validate.StructCtx(c.Request().Context(), req)
}

// validationMessage renders validator errors as a single line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return fmt.Sprintf("%v", he.Message)
		}
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "timebucket":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, bucketList()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed validation: %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func bucketList() string {
	all := timebucket.All()
	names := make([]string, len(all))
	for i, b := range all {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}
