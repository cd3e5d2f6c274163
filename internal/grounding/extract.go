// Package grounding extracts checkable claims from answer text and
// verifies them against typed evidence with exact equality.
package grounding

import (
	"regexp"
	"strconv"
	"strings"

	"veracity/internal/model"
)

// Claim patterns. Three fixed shapes, nothing fuzzy:
//
//	"<subject> uses NNNB"              -> numeric byte claim
//	"<mount phrase> is NN% full"       -> percent claim
//	"<service> is running|failed|..."  -> status claim
var (
	numericPattern = regexp.MustCompile(`(?i)\b([a-z0-9_.-]+)\s+uses\s+(\d+)\s*B\b`)
	percentPattern = regexp.MustCompile(`(?i)\b([a-z0-9_/.-]+)\s+(?:is|partition is|disk is)\s+(\d{1,3})%\s+full\b`)
	statusPattern  = regexp.MustCompile(`(?i)\b([a-z0-9_@.-]+)\s+is\s+(running|failed|stopped)\b`)
)

// Mount aliases: answers say "root" or "home", evidence says "/" and "/home"
var mountAliases = map[string]string{
	"root": "/",
	"home": "/home",
	"boot": "/boot",
	"var":  "/var",
	"tmp":  "/tmp",
}

// ExtractClaims finds every checkable assertion in the answer text.
// Order follows text position per pattern: numeric, then percent, then
// status. Identical inputs always yield identical claims.
func ExtractClaims(text string) []model.Claim {
	var claims []model.Claim

	for _, m := range numericPattern.FindAllStringSubmatch(text, -1) {
		bytes, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			continue
		}
		claims = append(claims, model.NumericClaim(strings.ToLower(m[1]), bytes))
	}

	for _, m := range percentPattern.FindAllStringSubmatch(text, -1) {
		percent, err := strconv.Atoi(m[2])
		if err != nil || percent > 100 {
			continue
		}
		claims = append(claims, model.PercentClaim(normalizeMount(m[1]), percent))
	}

	for _, m := range statusPattern.FindAllStringSubmatch(text, -1) {
		service := strings.ToLower(m[1])
		// "memory is running low" and friends are not service claims
		if _, isMount := mountAliases[service]; isMount || service == "memory" || service == "ram" || service == "cpu" || service == "disk" {
			continue
		}
		claims = append(claims, model.StatusClaim(service, model.ServiceState(strings.ToLower(m[2]))))
	}

	return claims
}

func normalizeMount(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(raw, "/") {
		return raw
	}
	if mount, ok := mountAliases[raw]; ok {
		return mount
	}
	return raw
}
