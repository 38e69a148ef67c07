package models

import "fmt"

// GestureCount is the number of gestures the classifier database provides.
const GestureCount = 19

// KnownGestures lists the trained gestures in logging order.
var KnownGestures = [GestureCount]string{
	"HeadBackward", "HeadBentForward", "HeadOnHand_Left", "HeadOnHand_Right",
	"HandOnHead_Left", "HandOnHead_Right", "SpineForward", "SpineBackward",
	"ShouldersForward", "ShouldersRaised", "ArmsAtTrunk", "ArmsRaisedShoulder",
	"HandsOnKnees", "CrossedArms", "ArmsRaisedUp", "ArmsExtendedDown",
	"HandsBehindHead", "HandOnNeck_Left", "HandOnNeck_Right",
}

// GestureResult is one classifier output for one gesture of one body.
type GestureResult struct {
	Name        string  `json:"name"`
	TrackingID  uint64  `json:"tracking_id"`
	Detected    bool    `json:"detected"`
	Confidence  float32 `json:"confidence"`
	Progress    float32 `json:"progress,omitempty"`
	HasProgress bool    `json:"has_progress,omitempty"`
}

// Validate checks the result is well-formed.
func (r *GestureResult) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("gesture name cannot be empty")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence must be between 0 and 1, got %f", r.Confidence)
	}
	if r.HasProgress && (r.Progress < 0 || r.Progress > 1) {
		return fmt.Errorf("progress must be between 0 and 1, got %f", r.Progress)
	}
	return nil
}
