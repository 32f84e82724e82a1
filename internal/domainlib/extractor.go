/*
Package domainlib derives grouping keys from server names.

A server name such as "SERVER01.contoso.com" splits at its first dot into a
hostname ("SERVER01") and a domain ("contoso.com"). Only domains that themselves
contain a dot are accepted, so "host.local" yields no domain at all.
*/
package domainlib

/*
srvdomains — server domain distribution tracker in Go
Copyright (C) 2025  Pepijn van der Stap <rxtls@vanderstap.info>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ExtractDomain returns the lowercased part of serverName after its first dot.
// The second return value is false when the name has no dot, nothing follows the
// dot, or the remainder fails IsValidDomain.
func ExtractDomain(serverName string) (string, bool) {
	serverName = strings.TrimSpace(serverName)
	if serverName == "" {
		return "", false
	}

	dot := strings.IndexByte(serverName, '.')
	if dot == -1 || dot == len(serverName)-1 {
		return "", false
	}

	domain := serverName[dot+1:]
	if domain == "" || !IsValidDomain(domain) {
		return "", false
	}
	return strings.ToLower(domain), true
}

// IsValidDomain reports whether domain is made of ASCII letters, digits, dots
// and hyphens, does not start or end with a dot or hyphen, and contains at
// least one dot.
func IsValidDomain(domain string) bool {
	if domain == "" {
		return false
	}
	switch domain[0] {
	case '.', '-':
		return false
	}
	switch domain[len(domain)-1] {
	case '.', '-':
		return false
	}

	hasDot := false
	for i := 0; i < len(domain); i++ {
		c := domain[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-':
		case c == '.':
			hasDot = true
		default:
			return false
		}
	}
	return hasDot
}

// ExtractHostname returns the part of serverName before its first dot, or the
// whole trimmed name when there is no dot. It returns false only for blank input.
func ExtractHostname(serverName string) (string, bool) {
	serverName = strings.TrimSpace(serverName)
	if serverName == "" {
		return "", false
	}
	if dot := strings.IndexByte(serverName, '.'); dot != -1 {
		return serverName[:dot], true
	}
	return serverName, true
}

// RegistrableDomain maps an extracted domain to its registrable part (eTLD+1)
// using the public suffix list, e.g. "corp.example.co.uk" -> "example.co.uk".
// Domains the list cannot reduce are returned unchanged.
func RegistrableDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return ""
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return domain
	}
	return etld1
}
