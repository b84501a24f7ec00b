// Package proc implements the one-shot subprocess engine family:
// command-line synthesizers that are spawned per utterance and write a
// WAV to stdout or a temp file (espeak, flite, festival, nanotts).
package proc
