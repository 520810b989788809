package zendesk

import (
	"encoding/base64"
	"fmt"

	"github.com/custodia-labs/zenpurge-cli/internal/core/domain"
)

// BasicAuthHeader builds the Authorization header value for the remote API.
//
// Two schemes are supported: plain username/password, and email plus API
// token where the API expects the username suffixed with "/token":
//
//	password:  base64("user:secret")
//	api-token: base64("user/token:secret")
func BasicAuthHeader(creds domain.Credentials) (string, error) {
	var pair string
	switch creds.Scheme {
	case domain.AuthPassword:
		pair = fmt.Sprintf("%s:%s", creds.Username, creds.Secret)
	case domain.AuthAPIToken:
		pair = fmt.Sprintf("%s/token:%s", creds.Username, creds.Secret)
	default:
		return "", domain.ErrInvalidAuthScheme
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(pair)), nil
}
