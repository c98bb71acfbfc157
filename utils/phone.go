package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid phone number")

var msisdnPattern = regexp.MustCompile(`^254[17]\d{8}$`)

// NormalizeMSISDN converts a Kenyan mobile number in any of the common forms
// (07XXXXXXXX, 01XXXXXXXX, 7XXXXXXXX, +2547XXXXXXXX, 2547XXXXXXXX) into the
// 2547XXXXXXXX form the Daraja API expects.
func NormalizeMSISDN(phone string) (string, error) {
	p := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	p = strings.TrimPrefix(p, "+")

	switch {
	case strings.HasPrefix(p, "254"):
	case strings.HasPrefix(p, "0") && len(p) == 10:
		p = "254" + p[1:]
	case len(p) == 9:
		p = "254" + p
	}

	if !msisdnPattern.MatchString(p) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
	}
	return p, nil
}
