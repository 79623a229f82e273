package middleware

// IsOwner reports whether the user is the site owner.
func IsOwner(user *AppUser) bool {
	return user != nil && user.Role == "owner"
}

// CanMutateCanvas decides mutation rights for a canvas. Authenticated
// users may mutate anything (this is a single-owner site); anonymous
// visitors only the explicitly public canvases. Reads are always open
// and never pass through here.
func CanMutateCanvas(app *App, user *AppUser, canvasID string) bool {
	if user != nil {
		return true
	}
	for _, id := range app.PublicCanvases {
		if id == canvasID {
			return true
		}
	}
	return false
}
