// Package ui renders the setup pipeline's terminal output.
//
// Every stage reports through a Printer as one status line:
//
//	[    OK] secHost is Reachable(Port 22)
//	[  WARN] secHost::secondary1 is not empty.
//	[NOT OK] Unable to Mount Gluster Volume secHost:secondary1
//	glusterfs exited 1: ...
//
// OK and WARN lines go to stdout; NOT OK lines and their detail go to
// stderr. Markers are colored green, yellow and red with Lip Gloss. The
// color decision is made per Printer from its ColorMode, never globally,
// so tests and --no-color runs can coexist in one process.
//
// PromptPassword collects the secondary admin password with a masked Huh
// input on a terminal and falls back to plain reads when there is none.
package ui
