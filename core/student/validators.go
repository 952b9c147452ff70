package student

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/ifcet/aula/core"
)

var (
	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("la contraseña debe tener al menos %d caracteres", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "la contraseña no debe contener espacios"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "la contraseña no puede ser solo numérica"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "la contraseña es muy parecida a tus datos personales"
)

func init() {
	InitValidators(core.Validate)
}

// InitValidators registers the student validations and their translations.
func InitValidators(validate *validator.Validate) {
	validate.RegisterStructValidation(studentStructValidation, NewStudent{}, ResetPassword{})
	core.RegisterCustomTranslation(validate, core.Translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, core.Translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, core.Translator, pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(validate, core.Translator, pwdAttrSimTag, pwdAttrSimText)
}

// studentStructValidation applies the password policy on NewStudent and ResetPassword.
func studentStructValidation(sl validator.StructLevel) {
	switch st := sl.Current().Interface().(type) {
	case NewStudent:
		validatePassword(st.Password, sl, st.FullName, st.Username, st.Email)
	case ResetPassword:
		validatePassword(st.Password, sl, st.Username)
	}
}

// validatePassword applies the password policy to provided password:
// - minLen: 8
// - no whitespace
// - not all numeric
// - no similarity with the student's attributes
func validatePassword(pwd string, sl validator.StructLevel, attrs ...string) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}
	if pwd == "" {
		return // reported by `required`
	}

	chars := []rune(pwd)
	if len(chars) < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}
	var digitCount int
	for _, char := range chars {
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
	}
	if digitCount == len(chars) {
		reportErr(pwdNotAllNumTag)
		return
	}

	lpwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(lpwd, ""), strings.Split(strings.ToLower(attr), "")).QuickRatio()
		if ratio >= pwdMaxSim {
			reportErr(pwdAttrSimTag)
			return
		}
	}
}
