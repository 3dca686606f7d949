// Package download saves anchor-triggered downloads into a directory, the way
// a browser's download manager does: the suggested name is reduced to a plain
// file name and an existing file is never overwritten, a " (n)" suffix is
// added instead.
package download
