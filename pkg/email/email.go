package email

import (
	"fmt"
	"regexp"
)

// validEmail is the RFC 5322 address pattern the alerting destinations accept.
var validEmail = regexp.MustCompile(`(?i)^(?:[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(?:\.[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*` +
	`|"(?:[\x01-\x08\x0b\x0c\x0e-\x1f\x21\x23-\x5b\x5d-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])*")` +
	`@(?:(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?` +
	`|\[(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?` +
	`|[a-z0-9-]*[a-z0-9]:(?:[\x01-\x08\x0b\x0c\x0e-\x1f\x21-\x5a\x53-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])+)\])$`)

// IsValid reports whether addr is an acceptable email address.
func IsValid(addr string) bool {
	return validEmail.MatchString(addr)
}

// Validate returns an error naming the first invalid address.
func Validate(addrs ...string) error {
	for _, a := range addrs {
		if !IsValid(a) {
			return fmt.Errorf("invalid email address: %s", a)
		}
	}
	return nil
}
