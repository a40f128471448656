package services

import (
	"regexp"
	"strings"
)

var (
	validEmailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
	validPhonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	unsafeFilenameRe  = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
)

func IsValidEmail(email string) bool {
	return validEmailPattern.MatchString(email)
}

// IsValidPhone expects the normalized form: an optional plus followed by digits only.
func IsValidPhone(phone string) bool {
	return validPhonePattern.MatchString(phone)
}

// SanitizeFilename replaces every character outside [A-Za-z0-9_.-] with an underscore.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "upload"
	}
	return unsafeFilenameRe.ReplaceAllString(name, "_")
}
