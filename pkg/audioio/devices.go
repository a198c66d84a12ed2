package audioio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gen2brain/malgo"
)

var ErrInvalidDevice = errors.New("invalid audio device index")

type Device struct {
	Index int
	Name  string
	id    malgo.DeviceID
}

// DeviceDirectory is a snapshot of the input and output devices, indexed from
// zero in enumeration order. Callers own it and pass it to whatever needs it.
type DeviceDirectory struct {
	Inputs  []Device
	Outputs []Device
}

func newDeviceDirectory(captures, playbacks []malgo.DeviceInfo) DeviceDirectory {
	dir := DeviceDirectory{}
	for i, info := range captures {
		dir.Inputs = append(dir.Inputs, Device{Index: i, Name: info.Name(), id: info.ID})
	}
	for i, info := range playbacks {
		dir.Outputs = append(dir.Outputs, Device{Index: i, Name: info.Name(), id: info.ID})
	}
	return dir
}

// Input returns the index -> name mapping of capture devices.
func (d DeviceDirectory) Input() map[int]string {
	return names(d.Inputs)
}

// Output returns the index -> name mapping of playback devices.
func (d DeviceDirectory) Output() map[int]string {
	return names(d.Outputs)
}

func names(devices []Device) map[int]string {
	out := make(map[int]string, len(devices))
	for _, dev := range devices {
		out[dev.Index] = dev.Name
	}
	return out
}

func (d DeviceDirectory) InputDevice(index int) (Device, error) {
	if index < 0 || index >= len(d.Inputs) {
		return Device{}, fmt.Errorf("%w: input %d (have %d)", ErrInvalidDevice, index, len(d.Inputs))
	}
	return d.Inputs[index], nil
}

func (d DeviceDirectory) OutputDevice(index int) (Device, error) {
	if index < 0 || index >= len(d.Outputs) {
		return Device{}, fmt.Errorf("%w: output %d (have %d)", ErrInvalidDevice, index, len(d.Outputs))
	}
	return d.Outputs[index], nil
}

// Validate checks that both indices select an existing device.
func (d DeviceDirectory) Validate(input, output int) error {
	if _, err := d.InputDevice(input); err != nil {
		return err
	}
	_, err := d.OutputDevice(output)
	return err
}

// FindByName returns the first input and output index whose name equals name, or -1.
func (d DeviceDirectory) FindByName(name string) (input int, output int) {
	input, output = -1, -1
	for _, dev := range d.Inputs {
		if dev.Name == name {
			input = dev.Index
			break
		}
	}
	for _, dev := range d.Outputs {
		if dev.Name == name {
			output = dev.Index
			break
		}
	}
	return
}

func (d DeviceDirectory) String() string {
	var sb strings.Builder
	sb.WriteString("input:\n")
	for _, dev := range d.Inputs {
		fmt.Fprintf(&sb, "  %d: %q\n", dev.Index, dev.Name)
	}
	sb.WriteString("output:\n")
	for _, dev := range d.Outputs {
		fmt.Fprintf(&sb, "  %d: %q\n", dev.Index, dev.Name)
	}
	return sb.String()
}
