package hls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const masterFixture = `#EXTM3U
#EXT-X-INDEPENDENT-SEGMENTS
#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="audio-stereo-160",NAME="English",LANGUAGE="en-US",CHARACTERISTICS="public.accessibility.describes-video",CHANNELS="2",URI="audio/en/gr160/prog_index.m3u8"
#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="audio-atmos",NAME="English",LANGUAGE="en-US",CHARACTERISTICS="public.original-content",CHANNELS="16/JOC",URI="audio/en/gr2448/prog_index.m3u8"
#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="audio-ac3",NAME="Français",LANGUAGE="fr",CHANNELS="6",URI="audio/fr/gr384/prog_index.m3u8"
#EXT-X-MEDIA:TYPE=SUBTITLES,GROUP-ID="subs",NAME="English",LANGUAGE="en",FORCED=NO,CHARACTERISTICS="public.accessibility.describes-music-and-sound",URI="subs/en/prog_index.m3u8"
#EXT-X-STREAM-INF:BANDWIDTH=2500000,AVERAGE-BANDWIDTH=2450000,CODECS="avc1.64001f,mp4a.40.2",RESOLUTION=1280x720,FRAME-RATE=23.976,VIDEO-RANGE=SDR
video/720/prog_index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=2600000,AVERAGE-BANDWIDTH=2500000,CODECS="avc1.64001f,mp4a.40.2",RESOLUTION=1280x720,FRAME-RATE=23.976,VIDEO-RANGE=SDR
video/720/prog_index.m3u8?alt=1
#EXT-X-STREAM-INF:BANDWIDTH=8000000,AVERAGE-BANDWIDTH=7800000,CODECS="hvc1.2.4.L123.B0",RESOLUTION=1920x1080,FRAME-RATE=23.976,VIDEO-RANGE=PQ
video/1080/prog_index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=16000000,AVERAGE-BANDWIDTH=15500000,CODECS="dvh1.05.06",RESOLUTION=3840x2160,FRAME-RATE=23.976,VIDEO-RANGE=PQ
video/2160/prog_index.m3u8
`

func TestParseMasterVideoStreams(t *testing.T) {
	streams, err := ParseMaster([]byte(masterFixture), "https://cdn.example.com/movie/master.m3u8")
	require.NoError(t, err)

	// The second 720p entry shares a path with the first and is dropped.
	require.Len(t, streams.Video, 3)

	sdr := streams.Video[0]
	assert.Equal(t, "AVC", sdr.Codec)
	assert.Equal(t, "SDR", sdr.VideoRange)
	assert.Equal(t, 1280, sdr.Width)
	assert.Equal(t, 720, sdr.Height)
	assert.Equal(t, 23.976, sdr.FPS)
	assert.Equal(t, "2.45 Mb/s", sdr.Bitrate)
	assert.Equal(t, "https://cdn.example.com/movie/video/720/prog_index.m3u8", sdr.URI)

	hdr := streams.Video[1]
	assert.Equal(t, "HEVC", hdr.Codec)
	assert.Equal(t, "HDR", hdr.VideoRange)

	dovi := streams.Video[2]
	assert.Equal(t, "HEVC", dovi.Codec)
	assert.Equal(t, "DoVi", dovi.VideoRange)
	assert.Equal(t, 2160, dovi.Height)
}

func TestParseMasterAudioStreams(t *testing.T) {
	streams, err := ParseMaster([]byte(masterFixture), "https://cdn.example.com/movie/master.m3u8")
	require.NoError(t, err)
	require.Len(t, streams.Audio, 3)

	described := streams.Audio[0]
	assert.True(t, described.IsAD)
	assert.False(t, described.IsOriginal)
	assert.Equal(t, "en-US", described.Language)
	assert.Equal(t, "AAC", described.Codec)
	assert.Equal(t, "160 Kb/s", described.Bitrate)
	assert.Equal(t, "2", described.Channels)

	atmos := streams.Audio[1]
	assert.False(t, atmos.IsAD)
	assert.True(t, atmos.IsOriginal)
	assert.Equal(t, "Atmos", atmos.Codec)
	assert.Equal(t, "488 Kb/s", atmos.Bitrate)
	assert.Equal(t, "16/JOC", atmos.Channels)

	surround := streams.Audio[2]
	assert.Equal(t, "DD5.1", surround.Codec)
	assert.Equal(t, "384 Kb/s", surround.Bitrate)
	assert.Equal(t, "fr", surround.Language)
}

func TestParseMasterSubtitleStreams(t *testing.T) {
	streams, err := ParseMaster([]byte(masterFixture), "https://cdn.example.com/movie/master.m3u8")
	require.NoError(t, err)
	require.Len(t, streams.Subtitle, 1)

	sub := streams.Subtitle[0]
	assert.Equal(t, "en", sub.Language)
	assert.False(t, sub.IsForced)
	assert.True(t, sub.IsSDH)
}

func TestParseMasterDefaults(t *testing.T) {
	playlist := "#EXTM3U\n" +
		"#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID=\"audio\",URI=\"a/prog_index.m3u8\"\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=1000000\n" +
		"v/prog_index.m3u8\n"
	streams, err := ParseMaster([]byte(playlist), "https://cdn.example.com/master.m3u8")
	require.NoError(t, err)

	require.Len(t, streams.Video, 1)
	assert.Equal(t, "SDR", streams.Video[0].VideoRange)
	assert.Equal(t, 0, streams.Video[0].Width)
	assert.Equal(t, "0 Mb/s", streams.Video[0].Bitrate)

	require.Len(t, streams.Audio, 1)
	assert.Equal(t, "und", streams.Audio[0].Language)
	assert.Equal(t, "2", streams.Audio[0].Channels)
	assert.Equal(t, "AAC", streams.Audio[0].Codec)
	assert.Equal(t, "0 Kb/s", streams.Audio[0].Bitrate)
}

func TestParseMasterRejectsNonPlaylist(t *testing.T) {
	_, err := ParseMaster([]byte("<html>error page</html>"), "https://cdn.example.com/master.m3u8")
	assert.ErrorIs(t, err, ErrNotPlaylist)
}

func TestParseMediaPlaylist(t *testing.T) {
	playlist := `#EXTM3U
#EXT-X-TARGETDURATION:6
#EXT-X-MAP:URI="init.mp4"
#EXTINF:6.0,
segment0.m4s
#EXTINF:6.0,
segment1.m4s
#EXTINF:6.0,
segment1.m4s
#EXTINF:6.0,
https://other.example.com/segment2.m4s
#EXT-X-ENDLIST
`
	segments, err := ParseMediaPlaylist([]byte(playlist), "https://cdn.example.com/movie/video/720/prog_index.m3u8")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://cdn.example.com/movie/video/720/init.mp4",
		"https://cdn.example.com/movie/video/720/segment0.m4s",
		"https://cdn.example.com/movie/video/720/segment1.m4s",
		"https://other.example.com/segment2.m4s",
	}, segments)
}

func TestParseAttributesQuotedCommas(t *testing.T) {
	attrs := parseAttributes(`BANDWIDTH=1000,CODECS="avc1.64001f,mp4a.40.2",RESOLUTION=1280x720`)
	assert.Equal(t, "1000", attrs["BANDWIDTH"])
	assert.Equal(t, "avc1.64001f,mp4a.40.2", attrs["CODECS"])
	assert.Equal(t, "1280x720", attrs["RESOLUTION"])
}
