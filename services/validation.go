package services

import (
	"fmt"
	"regexp"
	"strings"
)

// Valid session-setup enums. Roles cover both tech and business tracks.
var (
	InterviewRoles = []string{
		"frontend", "backend", "fullstack", "data", "qa", "ba", "devops", "mobile",
		"marketing", "sales", "hr", "finance", "product", "design", "content", "customer_service",
	}
	InterviewLevels    = []string{"intern", "junior", "mid", "senior"}
	InterviewModes     = []string{"behavioral", "technical", "mixed"}
	InterviewLanguages = []string{"vi", "en"}
)

const (
	MinQuestions = 1
	MaxQuestions = 50
	MaxTextLen   = 10000
)

// SessionSetup carries the parameters a user picks before starting a session
type SessionSetup struct {
	Role           string `json:"role"`
	Level          string `json:"level"`
	Mode           string `json:"mode"`
	Language       string `json:"language"`
	TotalQuestions int    `json:"total_questions"`
	JDText         string `json:"jd_text,omitempty"`
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func IsValidRole(role string) bool     { return contains(InterviewRoles, role) }
func IsValidLevel(level string) bool   { return contains(InterviewLevels, level) }
func IsValidMode(mode string) bool     { return contains(InterviewModes, mode) }
func IsValidLanguage(lang string) bool { return contains(InterviewLanguages, lang) }

var (
	htmlTagRe       = regexp.MustCompile(`<[^>]*>`)
	dangerousCharRe = regexp.MustCompile(`[<>'"]`)
)

// SanitizeText strips HTML tags and dangerous characters, trims whitespace,
// and caps the result at MaxTextLen runes.
func SanitizeText(text string) string {
	cleaned := htmlTagRe.ReplaceAllString(text, "")
	cleaned = dangerousCharRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	runes := []rune(cleaned)
	if len(runes) > MaxTextLen {
		return string(runes[:MaxTextLen])
	}
	return cleaned
}

// ValidateSessionSetup checks every setup parameter and collects all errors
// rather than stopping at the first one.
func ValidateSessionSetup(setup SessionSetup) []string {
	var errs []string

	if !IsValidRole(setup.Role) {
		errs = append(errs, fmt.Sprintf("invalid role: %s", setup.Role))
	}
	if !IsValidLevel(setup.Level) {
		errs = append(errs, fmt.Sprintf("invalid level: %s", setup.Level))
	}
	if !IsValidMode(setup.Mode) {
		errs = append(errs, fmt.Sprintf("invalid mode: %s", setup.Mode))
	}
	if !IsValidLanguage(setup.Language) {
		errs = append(errs, fmt.Sprintf("invalid language: %s", setup.Language))
	}
	if setup.TotalQuestions < MinQuestions || setup.TotalQuestions > MaxQuestions {
		errs = append(errs, fmt.Sprintf("total questions must be between %d and %d", MinQuestions, MaxQuestions))
	}
	if len(setup.JDText) > MaxTextLen {
		errs = append(errs, fmt.Sprintf("jd text too long (max %d chars)", MaxTextLen))
	}

	return errs
}
