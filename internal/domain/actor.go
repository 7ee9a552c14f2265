package domain

// Actor is the authorization context of a request. It is resolved once per
// request from the access token and passed into every service call; services
// never look up admin status on their own.
type Actor struct {
	UserID        int64
	Authenticated bool
	Admin         bool
}

// Anonymous returns the actor for unauthenticated requests.
func Anonymous() Actor {
	return Actor{}
}

// ActorFor builds the actor for an authenticated user.
func ActorFor(u *User) Actor {
	return Actor{
		UserID:        u.ID,
		Authenticated: true,
		Admin:         u.IsAdmin(),
	}
}

// CanModify reports whether the actor may change a resource owned by ownerID.
func (a Actor) CanModify(ownerID int64) bool {
	if !a.Authenticated {
		return false
	}
	return a.Admin || a.UserID == ownerID
}

// System returns the actor for operator tooling run on the server itself,
// such as catalog imports. It has admin rights but no user.
func System() Actor {
	return Actor{Authenticated: true, Admin: true}
}
