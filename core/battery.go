package core

// BattLevels holds the ascending blink thresholds for 2, 3 and 4 blinks.
// Samples below the first threshold give one blink.
type BattLevels [3]ADCValue

// DefaultBattLevels matches a 1-cell Li-ion pack behind the stock divider.
var DefaultBattLevels = BattLevels{145, 160, 170}

// BlinkCount quantizes a battery sample into 1..4 blinks.
func (b BattLevels) BlinkCount(v ADCValue) uint8 {
	n := uint8(1)
	for _, t := range b {
		if v >= t {
			n++
		}
	}
	return n
}

// Derate steps a direct level down after sustained low battery readings:
// |c|>>1 + 3 with the sign kept. The result never exceeds |c|.
func Derate(c Code) Code {
	a := absCode(c)
	n := a>>1 + 3
	if n > a {
		n = a
	}
	if c < 0 {
		return -n
	}
	return n
}

// BatteryMonitor counts consecutive low samples.
type BatteryMonitor struct {
	adc       ADCDriver
	channel   ADCChannelID
	threshold ADCValue
	limit     uint8
	low       uint8
}

// NewBatteryMonitor returns a monitor that derates after more than limit
// consecutive samples below threshold. threshold 0 disables it.
func NewBatteryMonitor(adc ADCDriver, ch ADCChannelID, threshold ADCValue, limit uint8) *BatteryMonitor {
	return &BatteryMonitor{adc: adc, channel: ch, threshold: threshold, limit: limit}
}

// Sample reads the battery. A failed read counts as in range.
func (m *BatteryMonitor) Sample() (ADCValue, bool) {
	v, err := m.adc.ReadRaw(m.channel)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Check takes one sample and reports whether the level should step down.
// The counter resets on any in-range sample and after each step.
func (m *BatteryMonitor) Check() bool {
	if m.threshold == 0 {
		return false
	}
	v, ok := m.Sample()
	if !ok || v >= m.threshold {
		m.low = 0
		return false
	}
	m.low = satInc(m.low, 255)
	if m.low > m.limit {
		m.low = 0
		return true
	}
	return false
}

// Low returns the current count of consecutive low samples.
func (m *BatteryMonitor) Low() uint8 { return m.low }
