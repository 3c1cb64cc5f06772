package ui

// Fixed-width status markers. Every status line starts with one so the
// messages line up in a column.
const (
	MarkerOK   = "[    OK]"
	MarkerWarn = "[  WARN]"
	MarkerFail = "[NOT OK]"
	MarkerDry  = "[   DRY]"
)
