// Package fastpath answers common queries deterministically from the
// cached snapshot. It never calls the language model.
package fastpath

import "strings"

// Class is the fast path routing decision for a query
type Class string

const (
	ClassSystemHealth   Class = "system_health"
	ClassDiskUsage      Class = "disk_usage"
	ClassMemoryUsage    Class = "memory_usage"
	ClassFailedServices Class = "failed_services"
	ClassWhatChanged    Class = "what_changed"
	ClassNotFastPath    Class = "not_fast_path"
)

// greetingPatterns are stripped before keyword matching. Users open with
// these often enough that classification has to see past them.
var greetingPatterns = []string{
	"hello", "hi ", "hey ", "good morning", "good afternoon", "good evening",
	"veracity", ":)", ":(", ";)", ":d", ":p", "!", "?", "...",
}

// Classify routes a query to a fast path class. Pure and total: lower-case,
// strip greetings, collapse whitespace, then match keyword sets in fixed
// priority order. The sets overlap ("errors" is health before anything
// else), so the order is part of the contract.
func Classify(query string) Class {
	q := strings.ToLower(query)
	stripped := stripGreetings(q)
	trimmed := strings.TrimSpace(q)

	switch {
	case containsAny(stripped,
		"how is my computer", "how's my computer", "computer doing",
		"any errors", "any problems", "any issues", "any warnings",
		"errors so far", "problems so far",
		"is everything ok", "is everything okay") ||
		strings.Contains(q, "health") ||
		trimmed == "status" || trimmed == "errors" || trimmed == "warnings" || trimmed == "problems":
		return ClassSystemHealth

	case containsAny(stripped,
		"what changed", "changes since", "since last time", "what's new", "what's different"):
		return ClassWhatChanged

	case containsAny(stripped,
		"disk usage", "disk space", "how much disk", "storage space"):
		return ClassDiskUsage

	case containsAny(stripped,
		"memory usage", "how much memory", "ram usage", "how much ram"):
		return ClassMemoryUsage

	case containsAny(stripped,
		"failed service", "failed unit", "service failures"):
		return ClassFailedServices
	}

	return ClassNotFastPath
}

func stripGreetings(q string) string {
	for _, p := range greetingPatterns {
		q = strings.ReplaceAll(q, p, " ")
	}
	return strings.Join(strings.Fields(q), " ")
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
