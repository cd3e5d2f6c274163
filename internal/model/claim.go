package model

import "fmt"

// ClaimKind categorizes the nature of an extracted claim
type ClaimKind string

const (
	ClaimNumeric ClaimKind = "numeric" // Byte figure, e.g. "memory uses 8804682957B"
	ClaimPercent ClaimKind = "percent" // Mount usage, e.g. "root is 85% full"
	ClaimStatus  ClaimKind = "status"  // Service state, e.g. "nginx is running"
)

// Claim is an atomic, checkable assertion extracted from candidate answer text.
// Exactly one kind's field group is populated. Claims are independent and
// never cross-reference each other.
type Claim struct {
	Kind ClaimKind `json:"kind"`

	// Numeric claim fields
	Subject string `json:"subject,omitempty"` // What the bytes refer to ("memory", "used", ...)
	Bytes   uint64 `json:"bytes,omitempty"`

	// Percent claim fields
	Mount   string `json:"mount,omitempty"` // Normalized mount path ("/", "/home")
	Percent int    `json:"percent,omitempty"`

	// Status claim fields
	Service string       `json:"service,omitempty"`
	State   ServiceState `json:"state,omitempty"`
}

// NumericClaim builds a numeric byte-figure claim.
func NumericClaim(subject string, bytes uint64) Claim {
	return Claim{Kind: ClaimNumeric, Subject: subject, Bytes: bytes}
}

// PercentClaim builds a mount-usage percent claim.
func PercentClaim(mount string, percent int) Claim {
	return Claim{Kind: ClaimPercent, Mount: mount, Percent: percent}
}

// StatusClaim builds a service-state claim.
func StatusClaim(service string, state ServiceState) Claim {
	return Claim{Kind: ClaimStatus, Service: service, State: state}
}

// Describe renders the claim for reports and logs.
func (c Claim) Describe() string {
	switch c.Kind {
	case ClaimNumeric:
		return fmt.Sprintf("%s = %dB", c.Subject, c.Bytes)
	case ClaimPercent:
		return fmt.Sprintf("%s = %d%% used", c.Mount, c.Percent)
	case ClaimStatus:
		return fmt.Sprintf("%s is %s", c.Service, c.State)
	default:
		return "unknown claim"
	}
}
