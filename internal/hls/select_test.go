package hls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func videoAt(width, height int) VideoStream {
	return VideoStream{Width: width, Height: height, Codec: "AVC", VideoRange: "SDR"}
}

func TestSelectEmptyManifest(t *testing.T) {
	video, audio := Select(&Streams{}, 0, "en")
	assert.Nil(t, video)
	assert.Nil(t, audio)

	video, audio = Select(nil, 0, "en")
	assert.Nil(t, video)
	assert.Nil(t, audio)
}

func TestSelectVideoRespectsResolutionCap(t *testing.T) {
	streams := &Streams{Video: []VideoStream{
		videoAt(1280, 720),
		videoAt(3840, 2160),
		videoAt(1920, 1080),
	}}

	video, _ := Select(streams, 1080, "en")
	require.NotNil(t, video)
	assert.Equal(t, 1080, video.Height)

	video, _ = Select(streams, 0, "en")
	require.NotNil(t, video)
	assert.Equal(t, 2160, video.Height)
}

func TestSelectVideoFallsBackToLowestWhenAllExceedCap(t *testing.T) {
	streams := &Streams{Video: []VideoStream{
		videoAt(3840, 2160),
		videoAt(1920, 1080),
	}}

	video, _ := Select(streams, 480, "en")
	require.NotNil(t, video)
	assert.Equal(t, 1080, video.Height)
}

func TestSelectAudioAvoidsDescriptionTracks(t *testing.T) {
	streams := &Streams{
		Video: []VideoStream{videoAt(1920, 1080)},
		Audio: []AudioStream{
			{Language: "en", IsAD: true, Bitrate: "160 Kb/s", URI: "ad"},
			{Language: "en", IsAD: false, Bitrate: "160 Kb/s", URI: "main"},
		},
	}

	_, audio := Select(streams, 0, "en")
	require.NotNil(t, audio)
	assert.Equal(t, "main", audio.URI)
}

func TestSelectAudioPrefersLanguageThenBitrate(t *testing.T) {
	streams := &Streams{
		Video: []VideoStream{videoAt(1920, 1080)},
		Audio: []AudioStream{
			{Language: "fr", Bitrate: "488 Kb/s", URI: "fr-high"},
			{Language: "en-US", Bitrate: "160 Kb/s", URI: "en-low"},
			{Language: "en-US", Bitrate: "384 Kb/s", URI: "en-high"},
		},
	}

	_, audio := Select(streams, 0, "en")
	require.NotNil(t, audio)
	assert.Equal(t, "en-high", audio.URI)
}

func TestSelectAudioFallsBackWhenNoLanguageMatch(t *testing.T) {
	streams := &Streams{
		Video: []VideoStream{videoAt(1920, 1080)},
		Audio: []AudioStream{
			{Language: "fr", Bitrate: "160 Kb/s", URI: "fr"},
			{Language: "de", Bitrate: "384 Kb/s", URI: "de"},
		},
	}

	_, audio := Select(streams, 0, "en")
	require.NotNil(t, audio)
	assert.Equal(t, "de", audio.URI)
}

func TestSelectAudioAllDescriptionTracks(t *testing.T) {
	streams := &Streams{
		Video: []VideoStream{videoAt(1920, 1080)},
		Audio: []AudioStream{
			{Language: "en", IsAD: true, Bitrate: "160 Kb/s", URI: "only"},
		},
	}

	_, audio := Select(streams, 0, "en")
	require.NotNil(t, audio)
	assert.Equal(t, "only", audio.URI)
}

func TestSelectVideoOnly(t *testing.T) {
	streams := &Streams{Video: []VideoStream{videoAt(1280, 720)}}
	video, audio := Select(streams, 0, "en")
	require.NotNil(t, video)
	assert.Nil(t, audio)
}

func TestBitrateKbps(t *testing.T) {
	assert.Equal(t, 160, bitrateKbps("160 Kb/s"))
	assert.Equal(t, 2450, bitrateKbps("2.45 Mb/s"))
	assert.Equal(t, 0, bitrateKbps(""))
	assert.Equal(t, 0, bitrateKbps("unknown"))
}
