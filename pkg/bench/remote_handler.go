package bench

import (
	"encoding/json"
	"fmt"

	"github.com/petrzlen/freqbench-golang/pkg/audio_utils"
	"github.com/rs/zerolog/log"
)

const (
	EventSweep  = "sweep"
	EventResult = "result"
	EventError  = "error"
)

// RemoteMessage is the base of every message exchanged with a remote bench client.
type RemoteMessage struct {
	Event string `json:"event"`
}

// SweepMessage asks for one measurement.
// Example:
//
//	{
//	 "event": "sweep",
//	 "startFreq": 20,
//	 "endFreq": 20000,
//	 "duration": 5,
//	 "sampleRate": 48000,
//	 "inputDevice": 0,
//	 "outputDevice": 1,
//	 "smoothWindow": 100,
//	 "points": 512
//	}
type SweepMessage struct {
	RemoteMessage
	SweepRequest
	// IncludeWav attaches the raw capture as a base64 encoded wav file.
	IncludeWav bool `json:"includeWav"`
}

type ResultMessage struct {
	RemoteMessage
	Frequencies []float64 `json:"frequencies"`
	ResponseDb  []float64 `json:"responseDb"`
	Offset      int       `json:"offset"`
	CapturedWav []byte    `json:"capturedWav,omitempty"`
}

type ErrorMessage struct {
	RemoteMessage
	Message string `json:"message"`
}

// RemoteHandler runs sweeps requested over a message channel pair, one at a
// time in arrival order. It satisfies networking.WebsocketMessageHandler.
type RemoteHandler struct {
	runner    *Runner
	readChan  chan []byte
	writeChan chan []byte
}

func NewRemoteHandler(runner *Runner) *RemoteHandler {
	result := &RemoteHandler{
		runner:    runner,
		readChan:  make(chan []byte, 100),
		writeChan: make(chan []byte, 100),
	}
	go result.readMessagesUntilChanClosed()
	return result
}

func (rh *RemoteHandler) GetReader() chan<- []byte {
	return rh.readChan
}

func (rh *RemoteHandler) GetWriter() <-chan []byte {
	return rh.writeChan
}

func (rh *RemoteHandler) readMessagesUntilChanClosed() {
	defer close(rh.writeChan)
	for msg := range rh.readChan {
		rh.write(rh.handleMessage(msg))
	}
	log.Info().Msg("remote bench client gone")
}

func (rh *RemoteHandler) handleMessage(msg []byte) any {
	var message RemoteMessage
	if err := json.Unmarshal(msg, &message); err != nil {
		log.Error().Err(err).Msgf("couldn't decode message from websocket: %s", string(msg))
		return errorMessage(fmt.Errorf("invalid message: %w", err))
	}

	log.Debug().Msgf("received message: %s", string(msg))

	switch message.Event {
	case EventSweep:
		var sweepMessage SweepMessage
		if err := json.Unmarshal(msg, &sweepMessage); err != nil {
			return errorMessage(fmt.Errorf("invalid sweep message: %w", err))
		}
		return rh.handleSweepMessage(sweepMessage)
	default:
		return errorMessage(fmt.Errorf("unknown message.Event %q", message.Event))
	}
}

func (rh *RemoteHandler) handleSweepMessage(msg SweepMessage) any {
	result, err := rh.runner.Measure(msg.SweepRequest)
	if err != nil {
		log.Error().Err(err).Msg("remote sweep failed")
		return errorMessage(err)
	}

	reply := ResultMessage{
		RemoteMessage: RemoteMessage{Event: EventResult},
		Frequencies:   result.Curve.Frequencies,
		ResponseDb:    result.Curve.ResponseDb,
		Offset:        result.Offset,
	}
	if msg.IncludeWav {
		reply.CapturedWav, err = audio_utils.EncodeWav(result.Measurement.Captured)
		if err != nil {
			return errorMessage(fmt.Errorf("cannot encode capture: %w", err))
		}
	}
	return reply
}

func (rh *RemoteHandler) write(reply any) {
	payload, err := json.Marshal(reply)
	if err != nil {
		log.Error().Err(err).Msg("json.Marshal reply")
		payload, _ = json.Marshal(errorMessage(err))
	}
	rh.writeChan <- payload
}

func errorMessage(err error) ErrorMessage {
	return ErrorMessage{
		RemoteMessage: RemoteMessage{Event: EventError},
		Message:       err.Error(),
	}
}
