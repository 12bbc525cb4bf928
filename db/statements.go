package db

import (
	"regexp"
	"strings"
)

var statementDelimiter = regexp.MustCompilePOSIX(";$")

// Statements splits a script on semicolons found at the end of a line
func Statements(script string) []string {
	result := []string{}
	for _, stmt := range statementDelimiter.Split(script, -1) {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			result = append(result, stmt)
		}
	}
	return result
}
