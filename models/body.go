package models

// BodyCount is the number of body slots the sensor reports every frame.
const BodyCount = 6

// JointCount is the number of skeletal joints per body.
const JointCount = 25

// TrackingState is the confidence the sensor has in a joint position.
type TrackingState int

const (
	NotTracked TrackingState = iota
	Inferred
	Tracked
)

func (s TrackingState) String() string {
	switch s {
	case Inferred:
		return "inferred"
	case Tracked:
		return "tracked"
	}
	return "not_tracked"
}

// JointType names one of the 25 skeletal joints.
type JointType int

const (
	SpineBase JointType = iota
	SpineMid
	Neck
	Head
	ShoulderLeft
	ElbowLeft
	WristLeft
	HandLeft
	ShoulderRight
	ElbowRight
	WristRight
	HandRight
	HipLeft
	KneeLeft
	AnkleLeft
	FootLeft
	HipRight
	KneeRight
	AnkleRight
	FootRight
	SpineShoulder
	HandTipLeft
	ThumbLeft
	HandTipRight
	ThumbRight
)

var jointNames = [JointCount]string{
	"SpineBase", "SpineMid", "Neck", "Head",
	"ShoulderLeft", "ElbowLeft", "WristLeft", "HandLeft",
	"ShoulderRight", "ElbowRight", "WristRight", "HandRight",
	"HipLeft", "KneeLeft", "AnkleLeft", "FootLeft",
	"HipRight", "KneeRight", "AnkleRight", "FootRight",
	"SpineShoulder", "HandTipLeft", "ThumbLeft", "HandTipRight", "ThumbRight",
}

func (j JointType) String() string {
	if j >= 0 && int(j) < JointCount {
		return jointNames[j]
	}
	return "unknown"
}

// Bones pairs the joints connected when drawing a skeleton.
var Bones = [][2]JointType{
	// torso
	{Head, Neck}, {Neck, SpineShoulder}, {SpineShoulder, SpineMid}, {SpineMid, SpineBase},
	{SpineShoulder, ShoulderRight}, {SpineShoulder, ShoulderLeft},
	{SpineBase, HipRight}, {SpineBase, HipLeft},
	// right arm
	{ShoulderRight, ElbowRight}, {ElbowRight, WristRight}, {WristRight, HandRight},
	{HandRight, HandTipRight}, {WristRight, ThumbRight},
	// left arm
	{ShoulderLeft, ElbowLeft}, {ElbowLeft, WristLeft}, {WristLeft, HandLeft},
	{HandLeft, HandTipLeft}, {WristLeft, ThumbLeft},
	// right leg
	{HipRight, KneeRight}, {KneeRight, AnkleRight}, {AnkleRight, FootRight},
	// left leg
	{HipLeft, KneeLeft}, {KneeLeft, AnkleLeft}, {AnkleLeft, FootLeft},
}

// Joint is one skeletal joint position.
type Joint struct {
	Type          JointType        `json:"type"`
	Position      CameraSpacePoint `json:"position"`
	TrackingState TrackingState    `json:"tracking_state"`
}

// Body is the content of one body slot. TrackingID 0 means the slot is empty.
type Body struct {
	TrackingID uint64            `json:"tracking_id"`
	IsTracked  bool              `json:"is_tracked"`
	Joints     [JointCount]Joint `json:"joints"`
}

// OverlayJoint is a joint projected into depth space for drawing.
type OverlayJoint struct {
	Point         DepthSpacePoint
	TrackingState TrackingState
}

// BodyOverlay is the skeleton of one tracked body in depth-space coordinates.
type BodyOverlay struct {
	Slot       int
	TrackingID uint64
	Joints     [JointCount]OverlayJoint
}
