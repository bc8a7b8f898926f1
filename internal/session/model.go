package session

// User is the account snapshot held by a logged-in session.
type User struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Pincode string `json:"pincode"`
}

// State is an immutable view of a client session.
type State struct {
	IsLoggedIn  bool  `json:"isLoggedIn"`
	CurrentUser *User `json:"currentUser"`
}

// Patch lists the user fields to overwrite. Nil fields are left untouched.
type Patch struct {
	Name    *string `json:"name,omitempty"`
	Address *string `json:"address,omitempty"`
	Pincode *string `json:"pincode,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Address == nil && p.Pincode == nil
}

// Apply returns u with the non-nil patch fields copied over.
func (p Patch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.Pincode != nil {
		u.Pincode = *p.Pincode
	}
	return u
}

func loggedIn(u User) State {
	copied := u
	return State{IsLoggedIn: true, CurrentUser: &copied}
}

func loggedOut() State {
	return State{}
}

// User returns a copy of the current user and whether one is present.
func (s State) User() (User, bool) {
	if !s.IsLoggedIn || s.CurrentUser == nil {
		return User{}, false
	}
	return *s.CurrentUser, true
}
