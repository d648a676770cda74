package users

// User is one account in the user catalog. The hash is a bcrypt digest and
// embeds its own salt.
type User struct {
	Username     string
	PasswordHash string
	Role         string
}
