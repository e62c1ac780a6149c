package partition

import "errors"

var (
	// ErrPhase2BeforePhase1 is returned when the master calls
	// ComputeBoundingBox before CommunicateBoundingBox has completed on it.
	ErrPhase2BeforePhase1 = errors.New("partition: ComputeBoundingBox called before CommunicateBoundingBox on master")

	// ErrAlreadySealed is returned when either phase is called again after
	// ComputeBoundingBox has already run to completion.
	ErrAlreadySealed = errors.New("partition: instance is sealed; phases run exactly once")
)
