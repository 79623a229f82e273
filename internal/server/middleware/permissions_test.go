package middleware

import "testing"

func TestCanMutateCanvas(t *testing.T) {
	app := &App{PublicCanvases: []string{"guestbook"}}

	if !CanMutateCanvas(app, &AppUser{UserID: 1, Role: "owner"}, "home") {
		t.Fatalf("authenticated user must be able to mutate")
	}
	if !CanMutateCanvas(app, nil, "guestbook") {
		t.Fatalf("anonymous mutation of a public canvas must be allowed")
	}
	if CanMutateCanvas(app, nil, "home") {
		t.Fatalf("anonymous mutation of a private canvas must be rejected")
	}
}

func TestIsOwner(t *testing.T) {
	if IsOwner(nil) {
		t.Fatalf("nil user is not the owner")
	}
	if IsOwner(&AppUser{Role: "user"}) {
		t.Fatalf("plain user is not the owner")
	}
	if !IsOwner(&AppUser{Role: "owner"}) {
		t.Fatalf("owner role must be recognized")
	}
}
