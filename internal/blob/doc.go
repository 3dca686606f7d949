// Package blob holds response bodies as in-memory binary objects and hands
// out short-lived "blob:" references to them.
//
// A reference created with Registry.CreateObjectURL keeps its Blob reachable
// until RevokeObjectURL is called. Callers own the reference and must revoke
// it once the download it backs has been triggered; Registry.Live reports how
// many references are still outstanding.
package blob
