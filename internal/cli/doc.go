// Package cli implements the georep-setup command-line interface.
//
// The root command takes the primary volume and the secondary endpoint
// and hands them to a setup.Pipeline together with the effective
// configuration:
//
//	georep-setup <primary-volume> <[user@]host::volume>
//	georep-setup config     - print the effective configuration
//	georep-setup version    - print build information
//
// # Configuration
//
// Settings are layered, lowest precedence first: built-in defaults, the
// config file (--config, /etc/georep/config.yaml or
// ~/.config/georep/config.yaml), GEOREP_* environment variables, and
// finally the command-line flags that were explicitly set.
//
// # Exit status
//
// 0 when the session was created (or the dry run finished), 1 on any
// failure. An interrupt prints "Exiting.." and also exits 1.
package cli
