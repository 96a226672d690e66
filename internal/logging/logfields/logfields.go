// Package logfields defines common logging fields which are used across packages
package logfields

const (
	// LogSubsys is the field denoting the subsystem when logging
	LogSubsys = "subsys"

	// File is the name of the source file being processed
	File = "file"

	// Note is the name of a stored note
	Note = "note"

	// TokenType is the type of a scanned token
	TokenType = "tokenType"

	// Tokens is a token count
	Tokens = "tokens"

	// Format is an output format
	Format = "format"

	// Workers is the number of concurrent workers
	Workers = "workers"

	// Rules is the path of a rule file
	Rules = "rules"
)
