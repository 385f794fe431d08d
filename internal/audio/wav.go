package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// EncodeWAV wraps mono s16le PCM in a 44-byte RIFF/WAVE header.
func EncodeWAV(pcm []byte, sampleRate int) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

// WAVInfo is the subset of a WAV header voicememo cares about.
type WAVInfo struct {
	SampleRate int
	Channels   int
	DataBytes  int
}

// Duration returns the playback length of the data chunk.
func (w WAVInfo) Duration() time.Duration {
	bytesPerSecond := w.SampleRate * w.Channels * 2
	if bytesPerSecond == 0 {
		return 0
	}
	return time.Duration(float64(w.DataBytes) / float64(bytesPerSecond) * float64(time.Second))
}

// ParseWAVHeader reads the canonical 44-byte header written by EncodeWAV.
func ParseWAVHeader(wav []byte) (WAVInfo, error) {
	if len(wav) < 44 {
		return WAVInfo{}, errors.New("wav: header too short")
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return WAVInfo{}, errors.New("wav: not a RIFF/WAVE file")
	}
	if string(wav[36:40]) != "data" {
		return WAVInfo{}, fmt.Errorf("wav: unexpected chunk %q", wav[36:40])
	}
	return WAVInfo{
		Channels:   int(binary.LittleEndian.Uint16(wav[22:24])),
		SampleRate: int(binary.LittleEndian.Uint32(wav[24:28])),
		DataBytes:  int(binary.LittleEndian.Uint32(wav[40:44])),
	}, nil
}

// PCMDuration returns the length of mono s16le PCM at sampleRate.
func PCMDuration(pcm []byte, sampleRate int) time.Duration {
	return WAVInfo{SampleRate: sampleRate, Channels: 1, DataBytes: len(pcm)}.Duration()
}

// Level returns the RMS level of a mono s16le chunk scaled to [0,1].
func Level(chunk []byte) float32 {
	n := len(chunk) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := float64(int16(binary.LittleEndian.Uint16(chunk[2*i:])))
		sum += s * s
	}
	rms := math.Sqrt(sum/float64(n)) / math.MaxInt16
	// Speech RMS rarely exceeds ~0.3 of full scale; stretch it for the meter.
	level := float32(math.Min(1, rms*3))
	return level
}
