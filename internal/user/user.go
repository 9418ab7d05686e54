// Package user names the person running the command line tools.
package user

import (
	"os"
	"os/user"
	"strings"
)

// Actor returns the name recorded for CLI actions such as signing a
// contract. A configured name wins; otherwise the account's display name,
// then its username, then $USER, then "unknown".
func Actor(configured string) string {
	if name := strings.TrimSpace(configured); name != "" {
		return name
	}
	if u, err := user.Current(); err == nil {
		// GECOS may carry extra comma separated fields
		if name, _, _ := strings.Cut(u.Name, ","); strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name)
		}
		if u.Username != "" {
			return u.Username
		}
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}
