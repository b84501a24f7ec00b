// Package wave decodes engine output into canonical PCM segments and
// assembles ordered segments (with silence for pauses) into one WAV.
package wave
