// Package cache stores synthesized audio so that re-reading a document does
// not run the synthesizer again. A short-lived memory tier sits in front of a
// compressed disk tier that survives restarts.
package cache
