// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sanitize maps arbitrary labels to names that are safe as file
// names and spreadsheet sheet names. BibTeX files and report sheets share
// this one function so a publication title always lands on the same label.
package sanitize

import "strings"

// replacer swaps every character that is illegal in Windows file names for
// an underscore. One character in, one character out: cleaning preserves
// length.
var replacer = strings.NewReplacer(
	`\`, "_",
	"/", "_",
	"*", "_",
	"?", "_",
	":", "_",
	`"`, "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// Clean returns label with illegal characters replaced by underscores.
func Clean(label string) string {
	return replacer.Replace(label)
}
