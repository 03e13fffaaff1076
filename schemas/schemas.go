// Package schemas embeds the JSON Schemas describing store rows.
package schemas

import "embed"

// FS holds every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

const (
	ApplicationRecord = "application_record.schema.json"
	ProfileRecord     = "profile_record.schema.json"
)
