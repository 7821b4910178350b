package nostd

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/labstack/echo/v4"
)

// CustomValidator plugs validator/v10 into echo with translated messages.
type CustomValidator struct {
	Validator *validator.Validate

	trans ut.Translator
}

// TransInit registers the English message translations. Must run before
// the validator is installed on echo.
func (cv *CustomValidator) TransInit() error {
	locale := en.New()
	uni := ut.New(locale, locale)

	trans, found := uni.GetTranslator("en")
	if !found {
		return errors.New("english translator not found")
	}
	cv.trans = trans

	return entranslations.RegisterDefaultTranslations(cv.Validator, trans)
}

func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.Validator.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) && cv.trans != nil {
		messages := make([]string, 0, len(ve))
		for _, fe := range ve {
			messages = append(messages, fe.Translate(cv.trans))
		}
		return echo.NewHTTPError(http.StatusBadRequest, strings.Join(messages, "; "))
	}

	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
