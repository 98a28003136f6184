// Package storage provides file management for extracted carousel images.
//
// The Manager type writes each image of a post into the output
// directory as shortcode_index.jpg, using temporary files and rename
// for atomic writes. It keeps an in-memory index of saved files and a
// content-hash set so re-runs skip images that are already on disk.
package storage
