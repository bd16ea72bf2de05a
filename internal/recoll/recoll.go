// Package recoll connects xatag to the Recoll desktop search indexer: the
// field names tags are published under, the generated fields file, and the
// reindex trigger.
package recoll

import (
	"github.com/ohspite/xatag/internal/slugs"
	"github.com/ohspite/xatag/internal/tags"
)

const (
	// FieldPrefix starts every Recoll field name xatag publishes.
	FieldPrefix = "xa:"
	// XapianPrefix starts every Xapian term prefix xatag registers.
	XapianPrefix = "XYXA"
	// RegenerateMarker must appear in the first MarkerLines lines of the
	// fields file for xatag to overwrite it.
	RegenerateMarker = "XATAG WILL REGENERATE THIS FILE"
	// MarkerLines is how far into the fields file the marker is searched for.
	MarkerLines = 5

	// ConfigDirName is the recoll directory inside the xatag config dir.
	ConfigDirName = "recoll"
	// FieldsFileName is the fields file inside ConfigDirName.
	FieldsFileName = "fields"
	// ConfFileName is the recoll.conf inside ConfigDirName.
	ConfFileName = "recoll.conf"
	// MonitorFlagName is touched in the recoll base dir to ask a running
	// recollindex monitor to index now.
	MonitorFlagName = "rclmonixnow"
)

// FieldName returns the Recoll field name for a tag key.
func FieldName(key string) string {
	return FieldPrefix + slugs.FieldSlug(tags.DisplayKey(key))
}

// XapianKey returns the Xapian term prefix for a tag key.
func XapianKey(key string) string {
	return XapianPrefix + slugs.TermSlug(tags.DisplayKey(key))
}
