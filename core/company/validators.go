package company

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/hudumahq/huduma/core"
)

var (
	// access key policy
	keyMinLen     = 8
	keyMinLenTag  = "keyminlen"
	keyMinLenText = fmt.Sprintf("access key must contain at least %d characters", keyMinLen)

	keyNoSpaceTag  = "keynospace"
	keyNoSpaceText = "access key must not contain whitespace"

	keyNotAllNumTag  = "keynotallnum"
	keyNotAllNumText = "access key cannot be entirely numeric"

	keyMaxSim      = .7
	keyAttrSimTag  = "keytoosim"
	keyAttrSimText = "access key cannot be similar to company attributes"
)

func init() {
	core.Validate.RegisterStructValidation(companyStructValidation, NewCompany{})
	core.Validate.RegisterStructValidation(companyStructValidation, UpdateCompany{})
	core.RegisterCustomTranslation(keyMinLenTag, keyMinLenText)
	core.RegisterCustomTranslation(keyNoSpaceTag, keyNoSpaceText)
	core.RegisterCustomTranslation(keyNotAllNumTag, keyNotAllNumText)
	core.RegisterCustomTranslation(keyAttrSimTag, keyAttrSimText)
}

// companyStructValidation does struct level validation on NewCompany and UpdateCompany.
func companyStructValidation(sl validator.StructLevel) {
	switch cmp := sl.Current().Interface().(type) {
	case NewCompany:
		if cmp.AccessKey != "" {
			validateAccessKey(cmp.AccessKey, cmp.Name, cmp.ContactEmail, sl)
		}
	case UpdateCompany:
		if cmp.AccessKey != "" {
			validateAccessKey(cmp.AccessKey, cmp.Name, cmp.ContactEmail, sl)
		}
	}
}

// validateAccessKey applies the access key policy:
// - minLen: 8
// - no whitespace
// - not all numeric
// - no company attrs similarity
func validateAccessKey(key, name, email string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(key, "access_key", "AccessKey", tag, "")
	}

	keyLen := len(key)
	if keyLen < keyMinLen {
		reportErr(keyMinLenTag)
		return
	}

	var digitCount int
	for _, char := range []rune(key) {
		if unicode.IsSpace(char) {
			reportErr(keyNoSpaceTag)
			return
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
	}
	if digitCount == keyLen {
		reportErr(keyNotAllNumTag)
		return
	}

	getRatio := func(pass, attr string) float64 {
		if attr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(attr, "")).QuickRatio()
	}
	if getRatio(key, name) >= keyMaxSim || getRatio(key, email) >= keyMaxSim {
		reportErr(keyAttrSimTag)
		return
	}
}
