package appfs

import "embed"

// FS holds the SQL migrations and the email templates.
// all: keeps the "_" layout templates.
//
//go:embed migrations all:templates
var FS embed.FS
