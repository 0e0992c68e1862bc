package domain

// Action is a capability that can be checked against an actor and a listing.
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Decide evaluates the capability matrix for an action.
//
//	role            owner?   view  edit  delete
//	unauthenticated   -      yes   no    no
//	user             yes     yes   yes   yes
//	user             no      yes   no    no
//	admin            yes     yes   yes   yes
//	admin            no      yes   no    yes
//
// Admins may delete any listing (moderation) but edit only their own;
// administrative authority does not extend to content substitution.
func Decide(action Action, actor *Actor, listing *Listing) bool {
	switch action {
	case ActionView:
		return true
	case ActionEdit:
		return actor.Owns(listing)
	case ActionDelete:
		return actor.Owns(listing) || actor.IsAdmin()
	default:
		return false
	}
}

// CanEdit reports whether the actor may edit the listing.
func CanEdit(actor *Actor, listing *Listing) bool {
	return Decide(ActionEdit, actor, listing)
}

// CanDelete reports whether the actor may delete the listing.
func CanDelete(actor *Actor, listing *Listing) bool {
	return Decide(ActionDelete, actor, listing)
}
