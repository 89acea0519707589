package repository

import "strings"

// likeEscape 统一使用 ! 作为转义字符，mysql/postgres/sqlite 行为一致
const likeEscape = " ESCAPE '!'"

var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

// containsPattern 生成按字面匹配的子串模式（已转小写）
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
