package core

// Drive selects how mode codes map onto output channels.
type Drive uint8

const (
	// DriveSingle: codes 0..255 are the FET duty.
	DriveSingle Drive = iota
	// DriveDual: codes -127..127, positive on the FET, negative on the
	// AMC bank.
	DriveDual
)

// MaxLevel is the highest direct level the drive accepts.
func (d Drive) MaxLevel() Code {
	if d == DriveDual {
		return 127
	}
	return 255
}

// MinLevel is the lowest direct level the drive accepts.
func (d Drive) MinLevel() Code {
	if d == DriveDual {
		return -127
	}
	return 1
}

func (d Drive) String() string {
	if d == DriveDual {
		return "dual"
	}
	return "single"
}

// duties maps a level to 8-bit (fet, amc) duties.
func (d Drive) duties(c Code) (fet, amc uint32) {
	if d != DriveDual {
		if c < 0 {
			c = 0
		}
		if c > 255 {
			c = 255
		}
		return uint32(c), 0
	}
	switch {
	case c > 0:
		return uint32(c)<<1 + 1, 0
	case c < 0:
		return 0, uint32(-c)<<1 + 1
	}
	return 0, 0
}

// Output drives the light through a PWMDriver.
type Output struct {
	pwm   PWMDriver
	drive Drive
	level Code
}

// NewOutput returns an Output for drive over pwm.
func NewOutput(pwm PWMDriver, drive Drive) *Output {
	return &Output{pwm: pwm, drive: drive}
}

// Configure prepares the channels the drive uses.
func (o *Output) Configure() error {
	if err := o.pwm.ConfigureChannel(ChannelFET); err != nil {
		return err
	}
	if o.drive == DriveDual {
		return o.pwm.ConfigureChannel(ChannelAMC)
	}
	return nil
}

// Level returns the last level set.
func (o *Output) Level() Code { return o.level }

// Set lights the output at level c. The unused channel is switched off.
func (o *Output) Set(c Code) error {
	o.level = c
	fet, amc := o.drive.duties(c)
	return o.write(fet, amc)
}

// Off switches every channel off.
func (o *Output) Off() error {
	return o.Set(0)
}

// Impulse drives the FET channel fully on or off. Blinks always use it.
func (o *Output) Impulse(on bool) error {
	var fet uint32
	if on {
		fet = 255
	}
	o.level = 0
	return o.write(fet, 0)
}

func (o *Output) write(fet, amc uint32) error {
	max := o.pwm.GetMaxValue()
	if err := o.pwm.SetDutyCycle(ChannelFET, scaleDuty(fet, max)); err != nil {
		return err
	}
	if o.drive != DriveDual {
		return nil
	}
	return o.pwm.SetDutyCycle(ChannelAMC, scaleDuty(amc, max))
}

// scaleDuty stretches an 8-bit duty to the driver's range.
func scaleDuty(v, max uint32) PWMValue {
	if max == 255 || max == 0 {
		return PWMValue(v)
	}
	return PWMValue(v * max / 255)
}
