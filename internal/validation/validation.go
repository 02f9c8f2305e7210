// Package validation checks user-supplied research input before it reaches
// the pipeline or the database.
package validation

import (
	"strings"
	"unicode/utf8"
)

const (
	maxTopicLength   = 200
	maxKeywordLength = 120
)

// ValidateTopic checks a research topic. Returns (false, reason) on
// rejection.
func ValidateTopic(topic string) (bool, string) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return false, "topic is required"
	}
	if utf8.RuneCountInString(topic) > maxTopicLength {
		return false, "topic is too long"
	}
	if strings.ContainsAny(topic, "\x00\n\r") {
		return false, "topic contains invalid characters"
	}
	return true, ""
}

// ValidateKeyword checks a keyword being added to a project's tracked set.
func ValidateKeyword(keyword string) (bool, string) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return false, "keyword is required"
	}
	if utf8.RuneCountInString(keyword) > maxKeywordLength {
		return false, "keyword is too long"
	}
	if strings.ContainsAny(keyword, "\x00\n\r") {
		return false, "keyword contains invalid characters"
	}
	return true, ""
}

// ValidateProjectName checks a project name.
func ValidateProjectName(name string) (bool, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, "project name is required"
	}
	if utf8.RuneCountInString(name) > 100 {
		return false, "project name is too long"
	}
	return true, ""
}
