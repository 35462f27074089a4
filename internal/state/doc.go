// Package state records what an install changed.
//
// A single InstallState is written next to the backups when install
// succeeds. It carries the OpenCart version that was patched and a checksum
// of every file sleuth wrote, so that status can report drift and uninstall
// can tell which files it owns.
//
// Key concepts:
//   - InstallState: one record per OpenCart tree, identified by a random UUID
//   - FileRecord: checksum and timestamp of one patched file
//   - StateStore: interface for loading, saving and deleting the record
package state
