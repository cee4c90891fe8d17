// Package clipboard tracks the item the user copied for a later paste and
// writes copied paths to the OS clipboard.
package clipboard
