// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when module files under a directory tree
// change.
//
// Filesystem events from fsnotify are filtered through doublestar patterns and
// coalesced: the callback fires once per quiet period with every path that
// changed. A callback that is still running when the next batch is due makes
// the watcher wait rather than run two passes at once.
package watch
