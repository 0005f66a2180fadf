// Package app loads configuration and wires stores and services together
// for the CLI.
package app
