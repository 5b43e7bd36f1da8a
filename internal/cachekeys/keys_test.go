package cachekeys

import (
	"testing"

	"github.com/LavishGent/tiercache/internal/cache"
)

func TestBuilders(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"UserPermissions", UserPermissions(42), "user:permissions:42"},
		{"UserRoles", UserRoles(7), "user:roles:7"},
		{"UserMenus", UserMenus(-1), "user:menus:-1"},
		{"MenuTree", MenuTree(), "menu:tree"},
		{"Config", Config("site.title"), "config:site.title"},
		{"Dict", Dict("gender"), "dict:gender"},
		{"TokenBlacklist", TokenBlacklist("abc"), "token:blacklist:abc"},
		{"Online", Online("tok"), "online:tok"},
		{"Join keeps empty parts", Join("a", "", "b"), "a::b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestPatternsSelectTheirKeys(t *testing.T) {
	tests := []struct {
		pattern string
		match   []string
		noMatch []string
	}{
		{
			pattern: AllUserPermissions(),
			match:   []string{UserPermissions(1), UserPermissions(99)},
			noMatch: []string{UserRoles(1), UserMenus(1)},
		},
		{
			pattern: AllUserRoles(),
			match:   []string{UserRoles(3)},
			noMatch: []string{UserPermissions(3)},
		},
		{
			pattern: AllUserMenus(),
			match:   []string{UserMenus(3)},
			noMatch: []string{MenuTree()},
		},
		{
			pattern: AllForUser(5),
			match:   []string{UserPermissions(5), UserRoles(5), UserMenus(5)},
			noMatch: []string{UserPermissions(6)},
		},
		{
			pattern: AllConfig(),
			match:   []string{Config("a"), Config("b.c")},
			noMatch: []string{Dict("a")},
		},
		{
			pattern: AllDicts(),
			match:   []string{Dict("gender")},
			noMatch: []string{Config("gender")},
		},
		{
			pattern: AllOnline(),
			match:   []string{Online("t1")},
			noMatch: []string{TokenBlacklist("t1")},
		},
		{
			pattern: Domain(DomainToken),
			match:   []string{TokenBlacklist("x")},
			noMatch: []string{Online("x")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			for _, key := range tt.match {
				if !cache.MatchPattern(tt.pattern, key) {
					t.Errorf("%q should match %q", tt.pattern, key)
				}
			}
			for _, key := range tt.noMatch {
				if cache.MatchPattern(tt.pattern, key) {
					t.Errorf("%q should not match %q", tt.pattern, key)
				}
			}
		})
	}
}
