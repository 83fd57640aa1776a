package registration

import "strings"

// DeriveEmail is the identity-account key for a username.
func DeriveEmail(username, domain string) string {
	return NormalizeUsername(username) + "@" + strings.TrimPrefix(strings.ToLower(domain), "@")
}

func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
