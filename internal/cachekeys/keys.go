// Package cachekeys builds keys in the <domain>:<qualifier>[:<id>] namespace
// and the glob patterns that select them.
package cachekeys

import (
	"strconv"
	"strings"
)

const sep = ":"

// Domains.
const (
	DomainUser   = "user"
	DomainMenu   = "menu"
	DomainConfig = "config"
	DomainDict   = "dict"
	DomainToken  = "token"
	DomainOnline = "online"
)

// Qualifiers.
const (
	qualPermissions = "permissions"
	qualRoles       = "roles"
	qualMenus       = "menus"
	qualTree        = "tree"
	qualBlacklist   = "blacklist"
)

// Join concatenates parts with ':'. Empty parts are kept so a key never
// collapses into its parent's namespace.
func Join(parts ...string) string {
	return strings.Join(parts, sep)
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func UserPermissions(userID int64) string { return Join(DomainUser, qualPermissions, id(userID)) }

func UserRoles(userID int64) string { return Join(DomainUser, qualRoles, id(userID)) }

func UserMenus(userID int64) string { return Join(DomainUser, qualMenus, id(userID)) }

// MenuTree is the single key holding the full menu tree.
func MenuTree() string { return Join(DomainMenu, qualTree) }

// Config holds one configuration value by its config key.
func Config(key string) string { return Join(DomainConfig, key) }

// Dict holds the entries of one dictionary type.
func Dict(typ string) string { return Join(DomainDict, typ) }

// TokenBlacklist marks a revoked token by its JWT ID.
func TokenBlacklist(jti string) string { return Join(DomainToken, qualBlacklist, jti) }

// Online records an active session.
func Online(token string) string { return Join(DomainOnline, token) }

// Patterns for DeleteByPattern.

func AllUserPermissions() string { return Join(DomainUser, qualPermissions, "*") }

func AllUserRoles() string { return Join(DomainUser, qualRoles, "*") }

func AllUserMenus() string { return Join(DomainUser, qualMenus, "*") }

// AllForUser selects every per-user entry for one user.
func AllForUser(userID int64) string { return Join(DomainUser, "*", id(userID)) }

func AllConfig() string { return Domain(DomainConfig) }

func AllDicts() string { return Domain(DomainDict) }

func AllOnline() string { return Domain(DomainOnline) }

// Domain selects every key under domain.
func Domain(domain string) string { return Join(domain, "*") }
