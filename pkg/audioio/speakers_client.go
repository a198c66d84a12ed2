package audioio

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/rs/zerolog/log"
)

// speakers plays float32 mono audio on the system default output through oto.
// It cannot select a device; use Audio.NewPlaybackDevice for that.
//
// The state flow is:
//  1. currentPlayer == nil => nothing going on
//  2. Play grabs mutex => starting to play
//  3. Stop (or playback done) grabs mutex, pauses the player and waits until the monitor finished.
//  4. Before another Play, you either have to wait on currentDone, or call Stop().
//
// Invariant: There is at most one playerMonitorRoutine running at the same time.
type speakers struct {
	otoContext *oto.Context

	currentPlayer *oto.Player
	currentDone   *sync.WaitGroup

	mutex    sync.Mutex // Protects currentPlayer and stopFlag
	stopFlag bool       // Indicates if playback should be stopped early
}

// NewSpeakers opens the default output. oto allows one context per process.
func NewSpeakers(sampleRate int) (OutputDevice, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: int(numChannels),
		Format:       oto.FormatFloat32LE,
	}

	log.Info().Int("sample_rate", sampleRate).Msg("oto context - will wait until ready")
	otoCtx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot init oto context: %w", ErrDevice, err)
	}
	<-readyChan
	log.Info().Msg("oto context ready")

	return &speakers{otoContext: otoCtx}, nil
}

// Play plays the entire stream and returns a WaitGroup if a routine wants to block until done.
func (s *speakers) Play(audioOutput io.Reader) (*sync.WaitGroup, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.currentPlayer != nil {
		return nil, fmt.Errorf("currentPlayer isn't nil, you need to call Stop first")
	}

	s.currentDone = &sync.WaitGroup{}
	s.currentDone.Add(1)

	s.currentPlayer = s.otoContext.NewPlayer(audioOutput)
	s.currentPlayer.Play()

	go s.playerMonitorRoutine()

	return s.currentDone, nil
}

func (s *speakers) Stop() error {
	s.mutex.Lock()

	if s.stopFlag {
		s.mutex.Unlock()
		return fmt.Errorf("double-stop called, the player is already being stopped")
	}

	if s.currentPlayer == nil {
		log.Debug().Msg("currentPlayer is already stopped")
		s.mutex.Unlock()
		return nil
	}

	log.Debug().Msg("currentPlayer is stopping ...")
	s.stopFlag = true
	s.currentPlayer.Pause()
	untilStopped := s.currentDone // copied as the monitor resets it
	s.mutex.Unlock()

	untilStopped.Wait()
	return nil
}

func (s *speakers) playerMonitorRoutine() {
	log.Debug().Msg("playerMonitorRoutine start")
	defer s.currentDone.Done()

	startTime := time.Now()
	for {
		s.mutex.Lock()
		playing := s.currentPlayer.IsPlaying()
		stop := s.stopFlag
		s.mutex.Unlock()

		if !playing || stop {
			break
		}

		time.Sleep(pollInterval)
	}

	s.mutex.Lock()
	if err := s.currentPlayer.Close(); err != nil {
		log.Error().Err(err).Msg("player.Close failed")
	}
	s.currentPlayer = nil
	s.currentDone = nil
	s.stopFlag = false
	s.mutex.Unlock()

	log.Debug().Dur("playback_duration", time.Since(startTime)).Msg("current playback done playerMonitorRoutine")
}
