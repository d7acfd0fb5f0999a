// Package workspace manages the scratch directory that receives a copy of
// every downloaded icon (<name>.svg).
//
// The directory persists after the run: file-format bundles point at it.
// Prepare empties it of markup left by earlier runs so that its contents
// always match the latest bundle.
package workspace
