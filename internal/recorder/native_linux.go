//go:build linux

package recorder

import (
	"fmt"
	"sync"

	"github.com/jfreymuth/pulse"
)

// pulseSource captures through PulseAudio (or PipeWire's pulse server).
type pulseSource struct {
	client *pulse.Client
	opts   []pulse.RecordOption

	mu     sync.Mutex
	stream *pulse.RecordStream
}

func openPlatformSource(sampleRate, channels int, device string) (pcmSource, error) {
	client, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}

	opts := []pulse.RecordOption{
		pulse.RecordSampleRate(sampleRate),
		pulse.RecordLatency(0.05),
	}
	if channels == 2 {
		opts = append(opts, pulse.RecordStereo)
	} else {
		opts = append(opts, pulse.RecordMono)
	}
	if device != "" && device != "default" {
		source, err := client.SourceByID(device)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("pulse source %q: %w", device, err)
		}
		opts = append(opts, pulse.RecordSource(source))
	}

	return &pulseSource{client: client, opts: opts}, nil
}

func (p *pulseSource) Start(onSamples func([]int16)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	writer := pulse.Int16Writer(func(buf []int16) (int, error) {
		onSamples(buf)
		return len(buf), nil
	})

	stream, err := p.client.NewRecord(writer, p.opts...)
	if err != nil {
		return fmt.Errorf("pulse record: %w", err)
	}
	stream.Start()
	p.stream = stream
	return nil
}

func (p *pulseSource) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream != nil {
		p.stream.Stop()
		p.stream.Close()
		p.stream = nil
	}
}

func (p *pulseSource) Close() {
	p.Stop()
	p.client.Close()
}
