package locomotion

// BoneNameNone disables the bone oscillator when used as the bone name.
// An empty name disables it as well.
const BoneNameNone = "none"

// LeanConfig tunes the lean estimator. Values are read-only at runtime.
type LeanConfig struct {
	// MaxLeanAngle clamps both the target and the output lean, degrees.
	MaxLeanAngle float64 `json:"max_lean_angle" yaml:"max_lean_angle"`

	// Acceleration is in cm/s^2; the multiplier is tuned to produce
	// degrees of lean.
	AccelerationLeanMultiplier float64 `json:"acceleration_lean_multiplier" yaml:"acceleration_lean_multiplier"`

	// Yaw rate is degrees/sec; the multiplier converts to degrees of
	// lean.
	YawRateLeanMultiplier float64 `json:"yaw_rate_lean_multiplier" yaml:"yaw_rate_lean_multiplier"`

	// LeanInterpSpeed is the exponential smoothing rate, 1/seconds.
	LeanInterpSpeed float64 `json:"lean_interp_speed" yaml:"lean_interp_speed"`
}

// DefaultLeanConfig returns the stock lean tuning.
func DefaultLeanConfig() LeanConfig {
	return LeanConfig{
		MaxLeanAngle:               20.0,
		AccelerationLeanMultiplier: 0.02,
		YawRateLeanMultiplier:      0.02,
		LeanInterpSpeed:            6.0,
	}
}

// BoneConfig tunes the procedural bone oscillator.
type BoneConfig struct {
	// Name is the bone to drive (example: head, spine_03). Empty or
	// BoneNameNone disables the oscillator.
	Name string `json:"name" yaml:"name"`

	// PitchAmplitude and YawAmplitude are in degrees.
	PitchAmplitude float64 `json:"pitch_amplitude" yaml:"pitch_amplitude"`
	YawAmplitude   float64 `json:"yaw_amplitude" yaml:"yaw_amplitude"`

	// Speed multiplies the accumulated phase time, radians/sec.
	Speed float64 `json:"speed" yaml:"speed"`
}

// Enabled reports whether a bone is configured.
func (c BoneConfig) Enabled() bool {
	return c.Name != "" && c.Name != BoneNameNone
}

// DefaultBoneConfig returns the stock oscillator tuning.
func DefaultBoneConfig() BoneConfig {
	return BoneConfig{
		Name:           "head",
		PitchAmplitude: 10.0,
		YawAmplitude:   10.0,
		Speed:          1.5,
	}
}

// FootIKConfig declares the foot trace tuning. The values are carried
// as configuration only; no trace or offset computation happens here.
type FootIKConfig struct {
	LeftFootTraceDistance  float64 `json:"left_foot_trace_distance" yaml:"left_foot_trace_distance"`
	RightFootTraceDistance float64 `json:"right_foot_trace_distance" yaml:"right_foot_trace_distance"`
	FootTraceStartHeight   float64 `json:"foot_trace_start_height" yaml:"foot_trace_start_height"`
	FootTraceEndHeight     float64 `json:"foot_trace_end_height" yaml:"foot_trace_end_height"`
	LeftFootBoneName       string  `json:"left_foot_bone_name" yaml:"left_foot_bone_name"`
	RightFootBoneName      string  `json:"right_foot_bone_name" yaml:"right_foot_bone_name"`
}

// DefaultFootIKConfig returns the stock foot trace declaration.
func DefaultFootIKConfig() FootIKConfig {
	return FootIKConfig{
		LeftFootTraceDistance:  55.0,
		RightFootTraceDistance: 55.0,
		FootTraceStartHeight:   25.0,
		FootTraceEndHeight:     65.0,
		LeftFootBoneName:       "foot_l",
		RightFootBoneName:      "foot_r",
	}
}

// Config bundles the animator tuning.
type Config struct {
	Lean   LeanConfig   `json:"lean" yaml:"lean"`
	Bone   BoneConfig   `json:"bone" yaml:"bone"`
	FootIK FootIKConfig `json:"foot_ik" yaml:"foot_ik"`
}

// DefaultConfig returns the stock animator tuning.
func DefaultConfig() Config {
	return Config{
		Lean:   DefaultLeanConfig(),
		Bone:   DefaultBoneConfig(),
		FootIK: DefaultFootIKConfig(),
	}
}
