// Package hls parses the adaptive-bitrate playlists that trailer pages point
// at and selects concrete renditions to download.
//
// Only the subset of the playlist format these playlists actually use is
// implemented: variant stream entries with their attribute lists, alternate
// audio and subtitle media entries, and media playlists consisting of an
// optional initialization map plus ordered segments.
package hls
