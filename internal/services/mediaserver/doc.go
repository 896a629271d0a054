// Package mediaserver notifies configured media servers after a trailer
// lands in the library.
//
// Each configured server gets a Client keyed by its type tag (emby,
// jellyfin, or plex). Emby and Jellyfin share one wire protocol and differ
// only in the type tag; Plex uses its own token header and refresh
// endpoint. Refresh failures are reported per server and never abort the
// download pipeline.
package mediaserver
