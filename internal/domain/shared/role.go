package shared

import (
	"errors"
	"strings"
)

// ErrUnknownRole indicates a caller role outside the closed enumeration
var ErrUnknownRole = errors.New("unknown caller role")

// Role is the closed set of caller roles forwarded by the upstream gateway
type Role string

const (
	RoleProvider Role = "provider" // contributes lendable capital
	RoleCustomer Role = "customer" // draws loans and makes payments
	RoleReviewer Role = "reviewer" // approves funds and loans, manages config
)

// ParseRole maps a header value onto the Role enumeration.
// Anything outside the three known roles is rejected.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleProvider:
		return RoleProvider, nil
	case RoleCustomer:
		return RoleCustomer, nil
	case RoleReviewer:
		return RoleReviewer, nil
	default:
		return "", ErrUnknownRole
	}
}
