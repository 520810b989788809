package domain

// AuthScheme selects how the Basic auth header is built for the remote API.
type AuthScheme string

const (
	// AuthPassword authenticates with a plain username/password pair.
	AuthPassword AuthScheme = "password"

	// AuthAPIToken authenticates with an email address and API token.
	// The remote API expects the username suffixed with "/token".
	AuthAPIToken AuthScheme = "api-token"
)

// ParseAuthScheme parses a scheme name from the CLI or config file.
func ParseAuthScheme(s string) (AuthScheme, error) {
	switch AuthScheme(s) {
	case AuthPassword:
		return AuthPassword, nil
	case AuthAPIToken:
		return AuthAPIToken, nil
	default:
		return "", ErrInvalidAuthScheme
	}
}

// Credentials holds the authentication material for the remote API.
// The core treats the secret as opaque; header construction lives in
// the connector's auth helper.
type Credentials struct {
	// Username is the account username or email address.
	Username string

	// Secret is the password or API token, depending on Scheme.
	Secret string

	// Scheme selects how the transport auth header is constructed.
	Scheme AuthScheme
}

// IsComplete reports whether the credentials carry everything needed
// to authenticate a request.
func (c Credentials) IsComplete() bool {
	return c.Username != "" && c.Secret != "" && (c.Scheme == AuthPassword || c.Scheme == AuthAPIToken)
}
