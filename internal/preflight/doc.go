// Package preflight provides readiness checks for the filesystem paths,
// external binaries, and media servers that trailgrab depends on.
//
// The CLI "trailgrab status" command renders the results of RunAll and
// CheckSystemDeps so a misconfigured library path or a missing ffmpeg
// binary shows up before a download is attempted.
package preflight
