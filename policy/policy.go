package policy

import (
	"local-services-api/models"
	"local-services-api/statemachine"
)

// PrincipalKind tags the two authenticated actor variants
type PrincipalKind string

const (
	KindUser  PrincipalKind = "user"
	KindAdmin PrincipalKind = "admin"
)

// Principal is the tagged union of the two account kinds. Exactly one of
// User/Admin is set, matching Kind.
type Principal struct {
	Kind  PrincipalKind
	User  *models.User
	Admin *models.Admin
}

func UserPrincipal(u *models.User) Principal {
	return Principal{Kind: KindUser, User: u}
}

func AdminPrincipal(a *models.Admin) Principal {
	return Principal{Kind: KindAdmin, Admin: a}
}

func (p Principal) IsAdmin() bool {
	return p.Kind == KindAdmin && p.Admin != nil
}

// OwnsBusiness reports whether the principal is the listing's owner.
func (p Principal) OwnsBusiness(b *models.Business) bool {
	return p.Kind == KindUser && p.User != nil && p.User.ID == b.OwnerID
}

// ActorFor maps a principal to its state machine actor for a listing, or ""
// when the principal has no standing to transition it at all.
func ActorFor(p Principal, b *models.Business) statemachine.Actor {
	if p.IsAdmin() {
		return statemachine.ActorAdmin
	}
	if p.OwnsBusiness(b) {
		return statemachine.ActorOwner
	}
	return ""
}

// Action enumerates the operations the policy decides on
type Action string

const (
	ActionRead       Action = "read"
	ActionUpdate     Action = "update"
	ActionSoftDelete Action = "soft-delete"
	ActionHardDelete Action = "hard-delete"
	ActionModerate   Action = "moderate"
)

// CanBusiness is the single decision function for listing access. Read on a
// non-active listing is restricted so existence is not leaked to outsiders;
// callers map a deny on read to 404, everything else to 403.
func CanBusiness(p *Principal, b *models.Business, action Action) bool {
	switch action {
	case ActionRead:
		if b.Status == models.StatusActive {
			return true
		}
		if p == nil {
			return false
		}
		return p.IsAdmin() || p.OwnsBusiness(b)
	case ActionUpdate, ActionSoftDelete:
		return p != nil && p.OwnsBusiness(b)
	case ActionHardDelete, ActionModerate:
		return p != nil && p.IsAdmin()
	}
	return false
}

// PortalRedirect reports where an account that hit the wrong login portal
// should be sent. portalType is the user type the portal serves. The empty
// string means login may proceed on this portal. This is a UX guard, not a
// security boundary — both portals share one credential store. The customer
// portal only turns away business accounts and vice versa; admin-typed users
// pass either portal, as before.
func PortalRedirect(portalType, accountType models.UserType) string {
	switch {
	case portalType == models.UserTypeCustomer && accountType == models.UserTypeBusiness:
		return "/business-login"
	case portalType == models.UserTypeBusiness && accountType == models.UserTypeCustomer:
		return "/login"
	}
	return ""
}
