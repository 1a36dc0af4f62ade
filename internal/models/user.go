package models

// Profile holds the optional contact details of a user.
type Profile struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// User is a registered storefront account. Passwords are kept in plain text;
// this is a demo store and there is no real authentication behind it.
type User struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"` // lowercased, doubles as the directory key
	Password string  `json:"password"`
	Profile  Profile `json:"profile"`
	Orders   []Order `json:"orders"`
}

// Clone returns a copy of u that shares no memory with it.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Orders != nil {
		c.Orders = make([]Order, len(u.Orders))
		for i := range u.Orders {
			c.Orders[i] = u.Orders[i].Clone()
		}
	}
	return &c
}

// Directory maps lowercased email to the user registered under it.
type Directory map[string]*User

// Clone deep-copies every entry of the directory.
func (d Directory) Clone() Directory {
	if d == nil {
		return nil
	}
	c := make(Directory, len(d))
	for k, u := range d {
		c[k] = u.Clone()
	}
	return c
}
