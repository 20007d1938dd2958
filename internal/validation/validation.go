// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var nicknameForbidden = regexp.MustCompile(`[<>]`)

const (
	minPasswordLen = 6
	maxPasswordLen = 128
	maxNicknameLen = 20
)

// ValidateEmail checks that the address has a plausible mailbox@domain shape.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("Email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("Please enter a valid email")
	}
	return nil
}

// ValidatePassword checks the portal's password length requirements.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("Password is required")
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("Password should be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("Password must not exceed %d characters", maxPasswordLen)
	}
	return nil
}

// ValidateNickname checks length and the forbidden markup characters.
func ValidateNickname(nickname string) error {
	if strings.TrimSpace(nickname) == "" {
		return fmt.Errorf("Nickname is required")
	}
	if utf8.RuneCountInString(nickname) > maxNicknameLen {
		return fmt.Errorf("Nickname should be less than %d characters", maxNicknameLen)
	}
	if nicknameForbidden.MatchString(nickname) {
		return fmt.Errorf("Nickname contains invalid characters")
	}
	return nil
}

// ValidateURL checks that the string parses as an absolute URL.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("Invalid URL format")
	}
	return nil
}
