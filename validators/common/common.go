package commonValidator

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"adconnect/middleware"
	"adconnect/utils"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags
	notBlankTag = "notblank"
	periodTag   = "period"
	msisdnTag   = "msisdn"
	planTag     = "plan"
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// report json (or form) names rather than Go field names
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = Validate.RegisterValidation(periodTag, periodValidation)
	_ = Validate.RegisterValidation(msisdnTag, msisdnValidation)
	_ = Validate.RegisterValidation(planTag, planValidation)

	registerCustomTranslations(notBlankTag, periodTag, msisdnTag, planTag)
}

func registerCustomTranslations(tags ...string) {
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range tags {
		_ = Validate.RegisterTranslation(tag, Translator, registerFn, translateCustomErrs)
	}
}

func translateCustomErrs(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case periodTag:
		return fe.Field() + " must look like \"3 Months\" (Day, Week, Month or Year)"
	case msisdnTag:
		return fe.Field() + " must be a Safaricom number such as 0712345678"
	case planTag:
		return fe.Field() + " must be one of basic, bronze, silver or gold"
	default:
		return fe.Field() + " is invalid"
	}
}

func stringValue(fl validator.FieldLevel) (string, bool) {
	f := fl.Field()
	if f.Kind() == reflect.Ptr {
		if f.IsNil() {
			return "", false
		}
		f = f.Elem()
	}
	if f.Kind() != reflect.String {
		return "", false
	}
	return f.String(), true
}

func notBlankValidation(fl validator.FieldLevel) bool {
	s, ok := stringValue(fl)
	return ok && strings.TrimSpace(s) != ""
}

func periodValidation(fl validator.FieldLevel) bool {
	s, ok := stringValue(fl)
	if !ok {
		return false
	}
	_, err := utils.ParsePeriod(s)
	return err == nil
}

func msisdnValidation(fl validator.FieldLevel) bool {
	s, ok := stringValue(fl)
	if !ok {
		return false
	}
	_, err := utils.NormalizeMSISDN(s)
	return err == nil
}

func planValidation(fl validator.FieldLevel) bool {
	s, ok := stringValue(fl)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic", "bronze", "silver", "gold":
		return true
	}
	return false
}

// ValidateStruct runs the struct tags on v and returns field -> message, or
// nil when v is valid.
func ValidateStruct(v interface{}) map[string]string {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return map[string]string{"request": err.Error()}
	}
	fldErrs := make(map[string]string, len(vErrs))
	for _, vErr := range vErrs {
		fldErrs[vErr.Field()] = vErr.Translate(Translator)
	}
	return fldErrs
}

// TrimStrings trims every string and *string field of the struct v points to.
func TrimStrings(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch {
		case f.Kind() == reflect.String:
			f.SetString(strings.TrimSpace(f.String()))
		case f.Kind() == reflect.Ptr && !f.IsNil() && f.Elem().Kind() == reflect.String:
			f.Elem().SetString(strings.TrimSpace(f.Elem().String()))
		}
	}
}

// ParseID reads a positive numeric route parameter.
func ParseID(c *fiber.Ctx, param string) (uint, bool) {
	raw := strings.TrimSpace(c.Params(param))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// RequireID is a middleware storing the numeric :param in Locals under
// localKey, answering 400 with "Invalid <label> ID!" otherwise.
func RequireID(param, localKey, label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := ParseID(c, param)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+label+" ID!", nil)
		}
		c.Locals(localKey, id)
		return c.Next()
	}
}

// ParseBody decodes the request body into reqData and trims its strings. It
// answers 400 itself and returns false on a malformed body.
func ParseBody(c *fiber.Ctx, reqData interface{}) bool {
	if err := c.BodyParser(reqData); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		_ = middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		return false
	}
	TrimStrings(reqData)
	return true
}
