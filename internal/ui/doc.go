// Package ui holds the interactive terminal pieces of the idguard CLI:
// the hygiene questionnaire prompt, progress spinners and history tables.
// Everything is drawn with pterm. Report bodies themselves are rendered by
// package report so that they can also go to files.
package ui
