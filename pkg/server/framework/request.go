package framework

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	entranslations "gopkg.in/go-playground/validator.v9/translations/en"
)

// validate holds the settings and caches for validating request payloads.
var validate *validator.Validate

// translator is a cache of locale and translation information.
var translator *ut.UniversalTranslator

func init() {
	validate = validator.New()

	// create a translator using english as the fallback locale
	enLocale := en.New()
	translator = ut.New(enLocale, enLocale)

	// register english error messages for validation errors
	lang, _ := translator.GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(validate, lang)

	// use JSON tag names for errors instead of Go struct field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// GetParam is a utility to get a path parameter from a gin context, nil if
// not found.
func GetParam(c *gin.Context, param string) *string {
	v := c.Param(param)
	if v == "" {
		return nil
	}
	return &v
}

// GetQueryValue is a utility to get a parameter value from the query string,
// nil if not found.
func GetQueryValue(c *gin.Context, param string) *string {
	v := c.Query(param)
	if v == "" {
		return nil
	}
	return &v
}

// Decode reads an HTTP request body looking for a JSON document. The body is
// decoded into the value provided, which is then validated.
func Decode(r *http.Request, val any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(val); err != nil {
		return NewRequestError(err, http.StatusBadRequest)
	}
	return ValidateRequest(val)
}

// ValidateRequest checks a request value for validation tags, translating
// any failures into field errors.
func ValidateRequest(val any) error {
	err := validate.Struct(val)
	if err == nil {
		return nil
	}
	vErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	lang, _ := translator.GetTranslator("en")
	fieldErrors := make([]FieldError, 0, len(vErrors))
	for _, vError := range vErrors {
		fieldErrors = append(fieldErrors, FieldError{
			Field: vError.Field(),
			Error: vError.Translate(lang),
		})
	}
	return &SafeError{
		Err:        errors.New("field validation error"),
		StatusCode: http.StatusBadRequest,
		Fields:     fieldErrors,
	}
}
