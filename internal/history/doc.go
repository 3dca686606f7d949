// Package history stores a record of every submission in a SQLite database,
// so earlier results can be listed and their downloads verified against the
// recorded digest.
package history
