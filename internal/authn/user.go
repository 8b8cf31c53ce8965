package authn

// User is an identity established by an Authenticator.
type User interface {
	UserSubject() string
	UserProvider() string
}

// Profile is implemented by identities carrying displayable attributes.
type Profile interface {
	UserDisplayName() string
	UserEmail() string
}

// TokenHolder is implemented by identities able to call remote APIs on
// behalf of the visitor.
type TokenHolder interface {
	UserAccessToken() string
}

// Key returns a stable identifier for user, or an empty string for
// anonymous visitors.
func Key(user User) string {
	if user == nil {
		return ""
	}

	return user.UserSubject() + "@" + user.UserProvider()
}
