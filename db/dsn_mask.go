package db

import "regexp"

var (
	dsnMasker    = regexp.MustCompile("(.)(?:.*)(.):(.)(?:.*)(.)@")
	dsnURLMasker = regexp.MustCompile("(://[^:/@]+):[^@]+@")
)

// MaskDSN hides credentials in a DSN so it can be logged
func MaskDSN(dsn string) string {
	if dsnURLMasker.MatchString(dsn) {
		return dsnURLMasker.ReplaceAllString(dsn, "$1:****@")
	}
	return dsnMasker.ReplaceAllString(dsn, "$1****$2:$3****$4@")
}
