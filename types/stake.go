package types

//go:generate msgp -io=false -tests=false

// StakeState is the stored form of the stake manager: the block it has
// reached, the updates still waiting for their block and the active set.
type StakeState struct {
	CurrentBlock uint64       `msg:"current"`
	Queue        StakeUpdates `msg:"queue"`
	Active       Validators   `msg:"active"`
}
