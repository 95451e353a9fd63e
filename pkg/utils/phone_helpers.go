package utils

import (
	"regexp"
	"strings"
)

var nonDigitRegexp = regexp.MustCompile(`\D`)

// NormalizePhone приводит номер к виду +<цифры>. Пустая строка, если цифр нет.
func NormalizePhone(phone string) string {
	digitsOnly := nonDigitRegexp.ReplaceAllString(phone, "")
	if digitsOnly == "" {
		return ""
	}
	return "+" + digitsOnly
}

// LooksLikePhone - логин без @ и с цифрами трактуем как телефон.
func LooksLikePhone(login string) bool {
	return !strings.Contains(login, "@") && nonDigitRegexp.ReplaceAllString(login, "") != ""
}
