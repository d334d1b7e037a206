package models

// PublicAccount is the self-service projection of an account.
// It never exposes PasswordHash.
type PublicAccount struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// AccountView is the administrative projection used by listings.
// Profile holds the public URL of the profile image, empty when none is set.
type AccountView struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	IsActive    bool   `json:"is_active"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
	IsListed    bool   `json:"is_listed"`
	Profile     string `json:"profile"`
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func ToPublic(a *Account) *PublicAccount {
	return &PublicAccount{
		Username:    a.Username,
		Email:       a.Email,
		PhoneNumber: a.PhoneNumber,
	}
}

// ToView builds the admin projection; urlFor resolves stored image keys and
// may be nil.
func ToView(a *Account, urlFor func(key string) string) AccountView {
	v := AccountView{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		PhoneNumber: a.PhoneNumber,
		IsActive:    a.IsActive,
		IsStaff:     a.IsStaff,
		IsSuperuser: a.IsSuperuser,
		IsListed:    a.IsListed,
	}
	if a.ProfileImage != "" {
		if urlFor != nil {
			v.Profile = urlFor(a.ProfileImage)
		} else {
			v.Profile = a.ProfileImage
		}
	}
	return v
}

func ToViews(accounts []*Account, urlFor func(key string) string) []AccountView {
	views := make([]AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, ToView(a, urlFor))
	}
	return views
}
