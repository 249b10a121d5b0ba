package trainingpack

// Vector3 is a decoded, dequantized 3D vector.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// IsZero reports whether v is the zero vector.
func (v Vector3) IsZero() bool { return v == Vector3{} }

// GoalBlocker is the pair of X/Z corner points bounding a goal obstacle, in
// field units with the wire offsets removed.
type GoalBlocker struct {
	FirstX  int `json:"first_x"`
	FirstZ  int `json:"first_z"`
	SecondX int `json:"second_x"`
	SecondZ int `json:"second_z"`
}

// Shot is one decoded shot record.
type Shot struct {
	BoostAmount             int         `json:"boost_amount"`
	StartingVelocity        int         `json:"starting_velocity"`
	ExtendedVelocity        Vector3     `json:"extended_velocity"`
	ExtendedAngularVelocity Vector3     `json:"extended_angular_velocity"`
	FreezeCar               bool        `json:"freeze_car"`
	HasStartingJump         bool        `json:"has_starting_jump"`
	GoalBlocker             GoalBlocker `json:"goal_blocker"`
}

// Header holds the sizing parameters read ahead of the columns.
type Header struct {
	HasCode             bool `json:"has_code"`
	NameLength          int  `json:"name_length"`
	ShotCount           int  `json:"shot_count"`
	MinBoost            int  `json:"min_boost"`
	MinVelocity         int  `json:"min_velocity"`
	MaxLinearMagnitude  int  `json:"max_linear_magnitude"`
	MaxAngularMagnitude int  `json:"max_angular_magnitude"`
	MinGoalBlockX       int  `json:"min_goal_block_x"`
	MinGoalBlockZ       int  `json:"min_goal_block_z"`
	BitsForBoost        int  `json:"bits_for_boost"`
	BitsForVelocity     int  `json:"bits_for_velocity"`
	BitsForXBlocker     int  `json:"bits_for_x_blocker"`
	BitsForZBlocker     int  `json:"bits_for_z_blocker"`
}

// Pack is a fully decoded training pack. Shots always holds ShotCount records.
type Pack struct {
	Name      string `json:"name"`
	Code      string `json:"code,omitempty"`
	ShotCount int    `json:"shot_count"`
	Header    Header `json:"header"`
	Shots     []Shot `json:"shots"`
	// Bits is the number of bits the decode pass consumed.
	Bits int `json:"bits"`
}
