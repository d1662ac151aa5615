package resolve

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/desertthunder/correx/internal/shared"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// report json names in messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
				return name
			}
			return fld.Name
		})
		validate = v
	})
	return validate
}

// Params are the route parameters of a correction page: /correction/{correctionId}?compare={compare}.
type Params struct {
	CorrectionID int `json:"correctionId" validate:"required,gt=0"`
	Compare      int `json:"compare" validate:"omitempty,gt=0"`
}

// Validate checks the parameters before anything is fetched.
func (p Params) Validate() error {
	err := getValidator().Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("%w: %s must be a positive integer, got %v", shared.ErrValidation, fe.Field(), fe.Value())
	}
	return fmt.Errorf("%w: %v", shared.ErrValidation, err)
}

// DiffQuery returns the diff these parameters select.
func (p Params) DiffQuery() DiffQuery {
	return SelectDiffQuery(p.CorrectionID, p.Compare)
}

// ParseParams parses raw route and query values. An empty rawCompare means no compare.
func ParseParams(rawID, rawCompare string) (Params, error) {
	id, err := strconv.Atoi(strings.TrimSpace(rawID))
	if err != nil {
		return Params{}, fmt.Errorf("%w: correctionId %q is not an integer", shared.ErrValidation, rawID)
	}

	p := Params{CorrectionID: id}
	if rawCompare = strings.TrimSpace(rawCompare); rawCompare != "" {
		compare, err := strconv.Atoi(rawCompare)
		if err != nil {
			return Params{}, fmt.Errorf("%w: compare %q is not an integer", shared.ErrValidation, rawCompare)
		}
		p.Compare = compare
	}

	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}
