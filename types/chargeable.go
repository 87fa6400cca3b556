package types

// Chargeable is anything that accumulates a resource cost while a
// transaction executes, measured in charge units.
type Chargeable interface {
	CalculateFee() uint64
}
