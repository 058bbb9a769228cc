package env

import (
	"net/url"
	"strings"
)

// RedactAccessKey masks an access key, showing only the first 4 and last 4 characters.
func RedactAccessKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// RedactURL masks the password part of credentials embedded in a URL.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.User != nil {
		password, hasPassword := u.User.Password()
		if hasPassword {
			u.User = url.UserPassword(u.User.Username(), RedactAccessKey(password))
		}
	}
	return u.String()
}

// IsPlaceholder reports whether a credential value is one of the
// stand-ins used when the environment does not provide one.
func IsPlaceholder(value string) bool {
	switch value {
	case "", "YOUR_USERNAME", "YOUR_ACCESS_KEY":
		return true
	}
	return false
}
