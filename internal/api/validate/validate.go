package validate

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

func (e *Errs) Add(field, msg string) {
	*e = append(*e, ErrField{Field: field, Msg: msg})
}

// Helpers

func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

// MaxLen limits by character count, not bytes, so multibyte text is not
// penalized.
func MaxLen(field, value string, max int) *ErrField {
	if utf8.RuneCountInString(value) > max {
		return &ErrField{Field: field, Msg: "must be at most " + strconv.Itoa(max) + " characters"}
	}
	return nil
}

// Password checks the registration password policy: at least 8 characters
// with one uppercase letter, one lowercase letter, and one digit.
func Password(field, value string) Errs {
	var errs Errs
	if len(value) < 8 {
		errs.Add(field, "must be at least 8 characters long")
	}
	var upper, lower, digit bool
	for _, r := range value {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !upper {
		errs.Add(field, "must contain at least one uppercase letter")
	}
	if !lower {
		errs.Add(field, "must contain at least one lowercase letter")
	}
	if !digit {
		errs.Add(field, "must contain at least one number")
	}
	return errs
}
