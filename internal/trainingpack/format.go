package trainingpack

// Format holds the wire constants of one bitstream revision. The stream
// carries no version tag, so the constants must match the producing plugin.
type Format struct {
	CodeChars   int // fixed identifier length, 8 bits per character
	CodeBits    int
	NameLenBits int
	NameChar    int // bits per name character
	MaxNameLen  int
	ShotBits    int
	MaxShots    int

	MinBoostBits     int
	MinVelocityBits  int
	LinearMagBits    int
	AngularMagBits   int
	MinBlockerBits   int
	BoostVelBits     int // packed boost/velocity width byte
	BlockerWidthBits int // packed blocker width byte
	VectorAxisBits   int

	MaxBoostWidth    int
	MaxVelocityWidth int
	MaxBlockerWidth  int

	VelocityOffset int
	BlockerXOffset int
	BlockerZOffset int
}

// Current is the revision produced by the plugin: angular velocity columns
// present, 13-bit velocity minimum, 12-bit goal blocker minimums.
var Current = Format{
	CodeChars:   19,
	CodeBits:    8,
	NameLenBits: 5,
	NameChar:    7,
	MaxNameLen:  30,
	ShotBits:    6,
	MaxShots:    50,

	MinBoostBits:     7,
	MinVelocityBits:  13,
	LinearMagBits:    12,
	AngularMagBits:   8,
	MinBlockerBits:   12,
	BoostVelBits:     7,
	BlockerWidthBits: 8,
	VectorAxisBits:   16,

	MaxBoostWidth:    7,
	MaxVelocityWidth: 15,
	MaxBlockerWidth:  15,

	VelocityOffset: 2300,
	BlockerXOffset: 910,
	BlockerZOffset: 20,
}

// axisScale is 1/(2^16-1); a raw axis of 0xFFFF maps to +magnitude.
func (f Format) axisScale() float64 {
	return 1 / float64(uint32(1)<<f.VectorAxisBits-1)
}
