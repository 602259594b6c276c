package repository

import (
	"strings"

	"golang.org/x/text/cases"
)

// FoldUsername is the key under which usernames are compared.
func FoldUsername(username string) string {
	return cases.Fold().String(strings.TrimSpace(username))
}
