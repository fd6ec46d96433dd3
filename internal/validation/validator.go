package validation

import (
	"reflect"
	"regexp"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

var (
	emailShape = regexp.MustCompile(`\S+@\S+\.\S+`)
	phone10    = regexp.MustCompile(`^\d{10}$`)
	zip5       = regexp.MustCompile(`^\d{5}$`)
	card16     = regexp.MustCompile(`^\d{16}$`)
	expiry     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvv        = regexp.MustCompile(`^\d{3,4}$`)
	gstin      = regexp.MustCompile(`^\d{2}[A-Z]{5}\d{4}[A-Z][A-Z\d]Z[A-Z\d]$`)
)

// New returns a configured validator with the checkout tags and the
// struct-level GST rule registered. Field names in errors are the json names.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, re := range map[string]*regexp.Regexp{
		"email_shape": emailShape,
		"phone10":     phone10,
		"zip5":        zip5,
		"expiry":      expiry,
		"cvv":         cvv,
	} {
		re := re
		// registration only fails on an empty tag
		_ = v.RegisterValidation(tag, func(fl validatorv10.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		})
	}
	_ = v.RegisterValidation("card16", func(fl validatorv10.FieldLevel) bool {
		return card16.MatchString(strings.ReplaceAll(fl.Field().String(), " ", ""))
	})

	v.RegisterStructValidation(contactStructValidation, Contact{})

	return v
}

// contactStructValidation requires company name and a well-formed GSTIN
// once the shopper ticks the GST box.
func contactStructValidation(sl validatorv10.StructLevel) {
	c := sl.Current().Interface().(Contact)
	if !c.HasGST {
		return
	}
	if c.CompanyName == "" {
		sl.ReportError(c.CompanyName, "companyName", "CompanyName", "required", "")
	}
	switch {
	case c.GSTNumber == "":
		sl.ReportError(c.GSTNumber, "gstNumber", "GSTNumber", "required", "")
	case !gstin.MatchString(c.GSTNumber):
		sl.ReportError(c.GSTNumber, "gstNumber", "GSTNumber", "gstin", "")
	}
}

// Check validates one section struct and returns one message per failing
// field, keyed by json field name. An empty map means the section is clean.
func Check(v *validatorv10.Validate, section interface{}) map[string]string {
	out := map[string]string{}
	err := v.Struct(section)
	if err == nil {
		return out
	}
	ve, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		out["error"] = err.Error()
		return out
	}
	for _, fe := range ve {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe.Field(), fe.Tag())
	}
	return out
}
