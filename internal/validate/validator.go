// Package validate statically screens final answer text for unsafe
// commands and unverifiable assertions. It is independent of grounding:
// grounding checks numbers against evidence, this checks the text itself.
package validate

import (
	"strings"

	"veracity/internal/model"
)

// Penalty weights per issue kind
const (
	penaltyHallucination = 0.30
	penaltyUnsafeCommand = 0.40
	penaltyFactualError  = 0.30
	penaltyIncomplete    = 0.10
	penaltyClarity       = 0.05
)

const passConfidenceFloor = 0.8

// Context carries what the caller knows to be real: existing files and
// installed packages. Empty lists disable the corresponding checks.
type Context struct {
	Question      string
	KnownFiles    []string
	KnownPackages []string
}

// Validator runs the five static passes over answer text
type Validator struct {
	commands Matcher
	files    Matcher
	packages Matcher

	safeCommands      map[string]bool
	dangerousPatterns []string
	baselinePackages  map[string]bool
}

// NewValidator creates a validator with the fixed command lists
func NewValidator() *Validator {
	return &Validator{
		commands:          commandMatcher{},
		files:             fileMatcher{},
		packages:          packageMatcher{},
		safeCommands:      buildSafeCommandList(),
		dangerousPatterns: buildDangerousPatterns(),
		baselinePackages:  buildBaselinePackages(),
	}
}

// Validate runs every pass and computes the confidence score.
// Passed means no issues at all, or confidence still at 0.8 or above.
func (v *Validator) Validate(answer string, ctx Context) model.ValidationResult {
	var issues []model.ValidationIssue

	issues = append(issues, v.checkCommands(answer)...)
	issues = append(issues, v.checkFileReferences(answer, ctx)...)
	issues = append(issues, v.checkPackageReferences(answer, ctx)...)
	issues = append(issues, v.checkCompleteness(answer, ctx)...)
	issues = append(issues, v.checkClarity(answer)...)

	confidence := calculateConfidence(issues)
	return model.ValidationResult{
		Passed:     len(issues) == 0 || confidence >= passConfidenceFloor,
		Confidence: confidence,
		Issues:     issues,
	}
}

// checkCommands screens extracted commands against the deny-list first,
// then the allow-list. A deny-list hit is unsafe no matter what.
func (v *Validator) checkCommands(answer string) []model.ValidationIssue {
	var issues []model.ValidationIssue

	for _, cmd := range v.commands.Extract(answer) {
		name, _, _ := strings.Cut(cmd, " ")
		if name == "" {
			continue
		}

		flagged := false
		for _, pattern := range v.dangerousPatterns {
			if strings.Contains(cmd, pattern) {
				issues = append(issues, model.ValidationIssue{
					Kind:   model.IssueUnsafeCommand,
					Item:   cmd,
					Reason: "contains dangerous pattern: " + pattern,
				})
				flagged = true
				break
			}
		}
		if flagged {
			continue
		}

		if !v.safeCommands[name] && len(cmd) > 50 {
			issues = append(issues, model.ValidationIssue{
				Kind:   model.IssueHallucination,
				Item:   cmd,
				Reason: "command not in known safe list and appears complex",
			})
		}
	}

	return issues
}

// checkFileReferences flags paths asserted to exist ("in X" / "at X")
// that are absent from the known-files list. Placeholder-looking paths
// are exempt.
func (v *Validator) checkFileReferences(answer string, ctx Context) []model.ValidationIssue {
	var issues []model.ValidationIssue

	for _, path := range v.files.Extract(answer) {
		if strings.Contains(path, "example") || strings.Contains(path, "<") || strings.Contains(path, "your") {
			continue
		}
		if knownFile(ctx.KnownFiles, path) {
			continue
		}
		if strings.Contains(answer, "in "+path) || strings.Contains(answer, "at "+path) {
			issues = append(issues, model.ValidationIssue{
				Kind:   model.IssueHallucination,
				Item:   path,
				Reason: "file path asserted as existing but not found",
			})
		}
	}

	return issues
}

func knownFile(known []string, path string) bool {
	for _, f := range known {
		if strings.Contains(f, path) {
			return true
		}
	}
	return false
}

// checkPackageReferences verifies install-line package names against the
// baseline set plus the caller's known-package list (when non-empty).
func (v *Validator) checkPackageReferences(answer string, ctx Context) []model.ValidationIssue {
	var issues []model.ValidationIssue

	for _, pkg := range v.packages.Extract(answer) {
		if v.baselinePackages[pkg] {
			continue
		}
		if len(ctx.KnownPackages) == 0 {
			continue
		}
		if containsString(ctx.KnownPackages, pkg) {
			continue
		}
		issues = append(issues, model.ValidationIssue{
			Kind:   model.IssueHallucination,
			Item:   pkg,
			Reason: "package name not verified against package database",
		})
	}

	return issues
}

// checkCompleteness flags answers too short for the question shape
func (v *Validator) checkCompleteness(answer string, ctx Context) []model.ValidationIssue {
	var issues []model.ValidationIssue

	if len(answer) < 50 {
		issues = append(issues, model.ValidationIssue{
			Kind:   model.IssueIncomplete,
			Item:   "length",
			Reason: "answer seems too brief to fully address the question",
		})
	}

	question := strings.ToLower(ctx.Question)
	lowerAnswer := strings.ToLower(answer)

	if strings.Contains(question, "how") && !strings.Contains(lowerAnswer, "step") &&
		!strings.Contains(answer, "1.") && !strings.Contains(answer, "First") {
		issues = append(issues, model.ValidationIssue{
			Kind:   model.IssueIncomplete,
			Item:   "steps",
			Reason: "question asks 'how' but answer doesn't provide clear steps",
		})
	}

	if strings.Contains(question, "why") && !strings.Contains(lowerAnswer, "because") &&
		!strings.Contains(lowerAnswer, "reason") {
		issues = append(issues, model.ValidationIssue{
			Kind:   model.IssueIncomplete,
			Item:   "reasoning",
			Reason: "question asks 'why' but answer doesn't provide reasoning",
		})
	}

	return issues
}

// checkClarity flags run-on sentences and unformatted privileged commands
func (v *Validator) checkClarity(answer string) []model.ValidationIssue {
	var issues []model.ValidationIssue

	for _, sentence := range strings.Split(answer, ".") {
		if len(strings.Fields(sentence)) > 50 {
			section := sentence
			if len(section) > 50 {
				section = section[:50] + "..."
			}
			issues = append(issues, model.ValidationIssue{
				Kind:   model.IssueClarity,
				Item:   strings.TrimSpace(section),
				Reason: "sentence is too long and complex",
			})
		}
	}

	if hasPrivilegedVerb(answer) && !strings.Contains(answer, "`") {
		issues = append(issues, model.ValidationIssue{
			Kind:   model.IssueClarity,
			Item:   "commands",
			Reason: "commands should be in code formatting",
		})
	}

	return issues
}

func calculateConfidence(issues []model.ValidationIssue) float64 {
	if len(issues) == 0 {
		return 1.0
	}

	penalty := 0.0
	for _, issue := range issues {
		switch issue.Kind {
		case model.IssueHallucination:
			penalty += penaltyHallucination
		case model.IssueUnsafeCommand:
			penalty += penaltyUnsafeCommand
		case model.IssueFactualError:
			penalty += penaltyFactualError
		case model.IssueIncomplete:
			penalty += penaltyIncomplete
		case model.IssueClarity:
			penalty += penaltyClarity
		}
	}

	confidence := 1.0 - penalty
	if confidence < 0 {
		return 0
	}
	return confidence
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func buildSafeCommandList() map[string]bool {
	commands := []string{
		"ls", "cd", "pwd", "cat", "echo", "grep", "find", "which", "man",
		"sudo", "pacman", "yay", "systemctl", "journalctl", "ip", "ping",
		"mkdir", "rm", "cp", "mv", "chmod", "chown", "ln", "touch",
		"git", "make", "free", "df", "du", "lsblk", "lspci", "uptime",
		"ps", "top", "htop", "kill", "killall", "pkill",
		"tar", "gzip", "unzip", "curl", "wget",
	}
	set := make(map[string]bool, len(commands))
	for _, c := range commands {
		set[c] = true
	}
	return set
}

func buildDangerousPatterns() []string {
	return []string{
		"rm -rf /",
		"dd if=",
		":(){ :|:& };:",
		"> /dev/sda",
		"mkfs",
		"chmod -R 777",
	}
}

func buildBaselinePackages() map[string]bool {
	packages := []string{"base-devel", "linux", "linux-headers", "gcc", "git"}
	set := make(map[string]bool, len(packages))
	for _, p := range packages {
		set[p] = true
	}
	return set
}
