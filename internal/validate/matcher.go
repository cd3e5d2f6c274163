package validate

import (
	"strings"
)

// Matcher extracts one category of checkable items from answer text.
// Each validation pass owns a named matcher so extraction rules stay
// separate from the judgment applied to what they find.
type Matcher interface {
	// Name identifies the matcher in reports
	Name() string

	// Extract returns the items found in text
	Extract(text string) []string
}

// commandMatcher pulls commands from fenced code blocks and inline-code
// spans that contain privileged verbs.
type commandMatcher struct{}

func (commandMatcher) Name() string { return "commands" }

func (commandMatcher) Extract(text string) []string {
	var commands []string

	inBlock := false
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "```") {
			inBlock = !inBlock
			continue
		}
		if inBlock && strings.TrimSpace(line) != "" {
			commands = append(commands, strings.TrimSpace(line))
		}
	}

	for i, part := range strings.Split(text, "`") {
		// Odd segments are inside backticks
		if i%2 == 0 {
			continue
		}
		if hasPrivilegedVerb(part) {
			commands = append(commands, strings.TrimSpace(part))
		}
	}

	return commands
}

func hasPrivilegedVerb(s string) bool {
	for _, verb := range []string{"sudo ", "pacman ", "systemctl ", "rm ", "dd ", "mkfs", "chmod ", "> /dev/"} {
		if strings.Contains(s, verb) {
			return true
		}
	}
	return false
}

// fileMatcher pulls path-like tokens from free text
type fileMatcher struct{}

func (fileMatcher) Name() string { return "files" }

func (fileMatcher) Extract(text string) []string {
	var paths []string
	for _, word := range strings.Fields(text) {
		if !strings.HasPrefix(word, "/") && !strings.HasPrefix(word, "~/") &&
			!strings.Contains(word, ".conf") && !strings.Contains(word, ".service") {
			continue
		}
		clean := strings.TrimFunc(word, func(r rune) bool {
			return !isPathRune(r)
		})
		if clean != "" {
			paths = append(paths, clean)
		}
	}
	return paths
}

func isPathRune(r rune) bool {
	return r == '/' || r == '.' || r == '-' || r == '_' || r == '~' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// packageMatcher pulls package names from install-style lines
type packageMatcher struct{}

func (packageMatcher) Name() string { return "packages" }

func (packageMatcher) Extract(text string) []string {
	var packages []string
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "pacman -S") && !strings.Contains(line, "yay -S") {
			continue
		}
		foundFlag := false
		for _, part := range strings.Fields(line) {
			if foundFlag && !strings.HasPrefix(part, "-") {
				name := strings.Trim(part, "`")
				if looksLikePackageName(name) {
					packages = append(packages, name)
				}
				// A closing backtick ends the command span
				if strings.HasSuffix(part, "`") {
					break
				}
			}
			if part == "-S" || part == "-Syu" || part == "-Sy" {
				foundFlag = true
			}
		}
	}
	return packages
}

func looksLikePackageName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' || r == '+' {
			continue
		}
		return false
	}
	return true
}
