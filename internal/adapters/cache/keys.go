package cache

import (
	"strconv"
	"strings"
)

const (
	popularKeyPrefix  = "is:popular:"
	responseKeyPrefix = "game:popular:limit:"
)

// PopularKey is the key of gameID's popularity flag.
func PopularKey(gameID string) string {
	return popularKeyPrefix + gameID
}

// ResponseKey is the key of gameID's cached leaderboard for limit.
func ResponseKey(gameID string, limit int) string {
	return responseKeyPrefix + gameID + ":" + strconv.Itoa(limit)
}

// GamePattern matches every cached response of gameID, whatever the limit.
func GamePattern(gameID string) string {
	return responseKeyPrefix + escapeGlob(gameID) + ":*"
}

// allPatterns cover every key owned by the cache.
func allPatterns() []string {
	return []string{popularKeyPrefix + "*", responseKeyPrefix + "*"}
}

var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
