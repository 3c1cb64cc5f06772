// Package setup drives the geo-replication setup pipeline.
//
// A Pipeline runs a fixed sequence of stages against one primary volume
// and one secondary endpoint:
//
//	privilege   effective UID must be 0
//	parse       [user@]host::volume
//	lock        one run per volume pair on this node
//	password    secondary admin password, never stored or logged
//	reach       TCP connect to the secondary's SSH port
//	connect     password-authenticated SSH session
//	version     gluster --version on both sides, exact match
//	capacity    temporary mounts, size and emptiness comparison
//	bootstrap   gsec_create, upload, copy file fan-out, add_secret_pub
//	session     gluster volume geo-replication ... create no-verify
//
// Every stage prints one or more status lines and the first failure stops
// the run. With force, the capacity and emptiness checks warn instead of
// failing. A version mismatch or a volume that cannot be mounted and
// measured always fails.
//
// # Trust bootstrap
//
// The Bootstrapper provisions passwordless SSH from every primary node to
// every reachable secondary node using only the secondary entry node:
//
//  1. gsec_create collects the primary nodes' public keys into
//     <workdir>/geo-replication/common_secret.pem.pub on this node.
//  2. The file is uploaded over SFTP to the admin user's home on the entry
//     node under a pair-specific name, then copied into the entry node's
//     geo-replication directory.
//  3. `gluster system:: copy file` pushes it to every secondary peer that
//     is up. Peers that are down are not covered and not retried.
//  4. `gluster system:: execute add_secret_pub` appends the keys to the
//     session user's authorized_keys on those peers.
//
// The steps are not resumable. Any failure aborts the run and the whole
// pipeline has to be re-run after the cause is fixed.
//
// # Dry run
//
// With DryRun set every read-only stage still runs, and the bootstrap and
// session commands are printed instead of executed.
package setup
