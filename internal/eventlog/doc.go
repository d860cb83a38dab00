// Package eventlog reads and writes terminal events in the plain text
// format "<signed-terminal> <epoch-millis> <username>", one event per line.
//
// A positive terminal number marks a login; a zero or negative one marks a
// logout at the absolute terminal number.
package eventlog
