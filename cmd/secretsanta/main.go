// Package main provides the entry point for the secretsanta CLI.
//
// secretsanta uploads an employee list to a Secret Santa server the way the
// server's upload page does, and saves the returned assignment file as
// Secret_Santa_Result_<year>.csv in the downloads directory.
//
// Usage:
//
//	secretsanta submit employees.csv
//	secretsanta history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
