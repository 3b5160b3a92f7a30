package validators

import (
  "reflect"
  "strings"
  "gopkg.in/go-playground/validator.v9"
)

// NotBlank fails strings that only contain whitespace. Other kinds pass.
func NotBlank(fl validator.FieldLevel) bool {
  field := fl.Field()
  if field.Kind() != reflect.String {
    return true
  }
  return strings.TrimSpace(field.String()) != ""
}

// NoBlankEntries fails string slices holding a whitespace-only entry, eg. "openid,,profile" from an env var.
func NoBlankEntries(fl validator.FieldLevel) bool {
  field := fl.Field()
  if field.Kind() != reflect.Slice {
    return true
  }
  for i := 0; i < field.Len(); i++ {
    e := field.Index(i)
    if e.Kind() == reflect.String && strings.TrimSpace(e.String()) == "" {
      return false
    }
  }
  return true
}

func Register(validate *validator.Validate) error {
  err := validate.RegisterValidation("notblank", NotBlank)
  if err != nil {
    return err
  }
  return validate.RegisterValidation("noblankentries", NoBlankEntries)
}
