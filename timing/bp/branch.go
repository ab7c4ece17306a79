package bp

// Direction is a branch direction.
type Direction uint8

// Branch directions.
const (
	NotTaken Direction = iota
	Taken
)

// DirectionOf converts a taken flag into a Direction.
func DirectionOf(taken bool) Direction {
	if taken {
		return Taken
	}
	return NotTaken
}

// String returns "T" or "N".
func (d Direction) String() string {
	if d == Taken {
		return "T"
	}
	return "N"
}

// Branch is the host's record of one dynamic branch instruction.
type Branch struct {
	// ID is the host's dynamic op number. Only used for tracing.
	ID uint64
	// CoreID selects the perceptron table.
	CoreID int
	// Addr is the predicted fetch address of the branch.
	Addr uint64
	// History is the global history snapshot taken at prediction time.
	// Update replaces it with the advanced history.
	History uint64
	// Conditional is false for unconditional branches, which never train.
	Conditional bool
	// Actual is the resolved direction. Valid once the branch resolves.
	Actual Direction
	// Confidence is |y| from the last Predict call on this record.
	Confidence int32
}
