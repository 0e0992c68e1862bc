package domain

import "testing"

func TestDecide(t *testing.T) {
	owned := &Listing{ID: "p-1", Owner: "sneha"}
	foreign := &Listing{ID: "p-2", Owner: "rajan"}

	sneha := &Actor{Username: "sneha", Role: RoleUser}
	admin := &Actor{Username: "sohaum", Role: RoleAdmin}

	tests := []struct {
		name    string
		action  Action
		actor   *Actor
		listing *Listing
		want    bool
	}{
		{"anonymous can view", ActionView, nil, foreign, true},
		{"anonymous cannot edit", ActionEdit, nil, owned, false},
		{"anonymous cannot delete", ActionDelete, nil, owned, false},
		{"owner can edit own listing", ActionEdit, sneha, owned, true},
		{"owner can delete own listing", ActionDelete, sneha, owned, true},
		{"user cannot edit foreign listing", ActionEdit, sneha, foreign, false},
		{"user cannot delete foreign listing", ActionDelete, sneha, foreign, false},
		{"admin can delete foreign listing", ActionDelete, admin, foreign, true},
		{"admin cannot edit foreign listing", ActionEdit, admin, foreign, false},
		{"admin can edit own listing", ActionEdit, admin, &Listing{ID: "p-3", Owner: "sohaum"}, true},
		{"unknown action denied", Action("transfer"), admin, owned, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.action, tt.actor, tt.listing); got != tt.want {
				t.Errorf("Decide(%q) = %v, want %v", tt.action, got, tt.want)
			}
		})
	}
}

func TestCanEditCanDelete(t *testing.T) {
	listing := &Listing{ID: "p-1", Owner: "sneha"}
	admin := &Actor{Username: "sohaum", Role: RoleAdmin}

	if CanEdit(admin, listing) {
		t.Error("CanEdit() admin on foreign listing = true, want false")
	}
	if !CanDelete(admin, listing) {
		t.Error("CanDelete() admin on foreign listing = false, want true")
	}
}
