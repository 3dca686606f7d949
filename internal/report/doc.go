// Package report renders the submission history for the terminal (plain
// text), for sharing (Markdown) and for other tools (JSON).
package report
