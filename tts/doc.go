// Package tts implements the core of the voxgate speech gateway: the
// engine abstraction, the voice registry and resolver, and the synthesis
// orchestrator that turns a text or SSML request into a single WAV.
package tts
