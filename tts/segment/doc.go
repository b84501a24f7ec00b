// Package segment splits synthesis input into ordered units: plain text
// by line, SSML by sentence with voice/language overrides and pause
// directives.
package segment
