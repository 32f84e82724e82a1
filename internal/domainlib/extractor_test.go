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
	"testing"
)

// TestExtractDomain covers the first-dot split and the validation rules applied to the remainder.
func TestExtractDomain(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"Windows FQDN", "SERVER01.contoso.com", "contoso.com", true},
		{"Nested domain", "WEB1.sales.acme.org", "sales.acme.org", true},
		{"Surrounding spaces", "  db7.corp.example.net\t", "corp.example.net", true},
		{"Uppercase domain", "host.CORP.Example.COM", "corp.example.com", true},
		{"Hyphenated label", "app.my-corp.example.com", "my-corp.example.com", true},
		{"Digits", "n1.10.example.com", "10.example.com", true},
		{"No dot", "server", "", false},
		{"Trailing dot only", "server.", "", false},
		{"Single label domain", "a.b", "", false},
		{"Single label local", "host.local", "", false},
		{"Empty", "", "", false},
		{"Blank", "   ", "", false},
		{"Domain ends with dot", "host.example.com.", "", false},
		{"Domain starts with dot", "host..example.com", "", false},
		{"Domain starts with dash", "host.-example.com", "", false},
		{"Domain ends with dash", "host.example.com-", "", false},
		{"Underscore", "host.ex_ample.com", "", false},
		{"Internal space", "host.exa mple.com", "", false},
		{"Non-ASCII", "host.bücher.example", "", false},
		{"Port suffix", "host.example.com:443", "", false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractDomain(tc.input)
			if ok != tc.wantOK || got != tc.want {
				t.Errorf("ExtractDomain(%q) = (%q, %t); want (%q, %t)", tc.input, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestIsValidDomain(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		input string
		want  bool
	}{
		{"contoso.com", true},
		{"Contoso.COM", true},
		{"a-b.c-d", true},
		{"com", false},
		{"", false},
		{".com", false},
		{"com.", false},
		{"-a.com", false},
		{"a.com-", false},
		{"a,b.com", false},
		{"a/b.com", false},
	}
	for _, tc := range testCases {
		if got := IsValidDomain(tc.input); got != tc.want {
			t.Errorf("IsValidDomain(%q) = %t; want %t", tc.input, got, tc.want)
		}
	}
}

func TestExtractHostname(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"FQDN", "SERVER01.contoso.com", "SERVER01", true},
		{"No dot keeps name", "server", "server", true},
		{"No dot trims", "  orphan  ", "orphan", true},
		{"Trailing dot", "server.", "server", true},
		{"Leading dot", ".contoso.com", "", true},
		{"Empty", "", "", false},
		{"Blank", " \t ", "", false},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractHostname(tc.input)
			if ok != tc.wantOK || got != tc.want {
				t.Errorf("ExtractHostname(%q) = (%q, %t); want (%q, %t)", tc.input, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

// TestNoDotNames checks that dotless names never yield a domain and come back unchanged as hostnames.
func TestNoDotNames(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"DC01", "fileserver", "x", "build-agent-07"} {
		if d, ok := ExtractDomain(name); ok {
			t.Errorf("ExtractDomain(%q) = %q; want none", name, d)
		}
		if h, _ := ExtractHostname(name); h != strings.TrimSpace(name) {
			t.Errorf("ExtractHostname(%q) = %q; want input unchanged", name, h)
		}
	}
}

func TestRegistrableDomain(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		input string
		want  string
	}{
		{"corp.example.com", "example.com"},
		{"example.com", "example.com"},
		{"sales.acme.org", "acme.org"},
		{"eu.example.co.uk", "example.co.uk"},
		{"ad.contoso.local", "contoso.local"},
		{"CORP.EXAMPLE.COM", "example.com"},
		{"com", "com"},
		{"", ""},
	}
	for _, tc := range testCases {
		if got := RegistrableDomain(tc.input); got != tc.want {
			t.Errorf("RegistrableDomain(%q) = %q; want %q", tc.input, got, tc.want)
		}
	}
}

func BenchmarkExtractDomain(b *testing.B) {
	name := "SERVER01.Corp.Contoso.COM"
	for i := 0; i < b.N; i++ {
		_, _ = ExtractDomain(name)
	}
}
