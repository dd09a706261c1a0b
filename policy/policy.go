// Copyright (c) 2025 Ethan Low.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package policy

import (
	"strings"

	"github.com/ethanlow/agoravote/auth"
)

// Policy decides whether an authenticated caller may perform a mutation.
// All predicates are pure: they compare the caller against creator facts
// the handler already fetched, plus a deployment-configured admin set.
type Policy struct {
	admins map[string]struct{}
}

// New builds a Policy from the configured admin address list. Addresses
// are matched case-insensitively.
func New(adminAddresses []string) *Policy {
	admins := make(map[string]struct{}, len(adminAddresses))
	for _, a := range adminAddresses {
		admins[strings.ToLower(a)] = struct{}{}
	}
	return &Policy{admins: admins}
}

// IsAdmin reports whether caller is in the deployment admin set.
func (p *Policy) IsAdmin(caller auth.Address) bool {
	_, ok := p.admins[caller.Lower()]
	return ok
}

// CanEditInitiative allows the initiative's creator, or an admin.
func (p *Policy) CanEditInitiative(caller auth.Address, creator string) bool {
	return caller.Equal(creator) || p.IsAdmin(caller)
}

// CanEditItemStatus allows the initiative's creator or the item's own
// creator (either path is sufficient), or an admin.
func (p *Policy) CanEditItemStatus(caller auth.Address, initiativeCreator, itemCreator string) bool {
	return caller.Equal(initiativeCreator) || caller.Equal(itemCreator) || p.IsAdmin(caller)
}
