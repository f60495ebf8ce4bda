package robot

// Segment names a commandable node of the robot.
type Segment string

const (
	FrontFoot  Segment = "front_foot"
	MiddleFoot Segment = "middle_foot"
	RearFoot   Segment = "rear_foot"
	// Camera is not a foot; it receives VIEW actions.
	Camera Segment = "camera"
)

// Segments lists the feet in configuration order.
var Segments = [3]Segment{FrontFoot, MiddleFoot, RearFoot}

// IndexOf returns the configuration index of a foot.
func IndexOf(name string) (int, bool) {
	for i, s := range Segments {
		if string(s) == name {
			return i, true
		}
	}
	return 0, false
}

// IndexOrDefault is IndexOf with the front foot as the fallback for names
// that are not feet. fellBack reports whether the fallback was used.
func IndexOrDefault(name string) (idx int, fellBack bool) {
	idx, ok := IndexOf(name)
	return idx, !ok
}
