package treatment

import "errors"

var (
	ErrTreatmentNotFound = errors.New("treatment not found")
	ErrUnknownSlot       = errors.New("slot is not part of the treatment catalog")
)
