package bp

// RecoveryInfo describes a misprediction recovery.
type RecoveryInfo struct {
	CoreID   int
	BranchID uint64
	// History is the corrected global history the host restarts fetch with.
	History uint64
}

// Hooks are the pipeline notification points a predictor may act on.
// Predictors that do not train speculatively embed NopHooks.
type Hooks interface {
	// Timestamp is called when the branch is fetched.
	Timestamp(b *Branch)
	// Recover is called after a misprediction is detected.
	Recover(info RecoveryInfo)
	// SpecUpdate is called when speculative state may be updated.
	SpecUpdate(b *Branch)
	// Retire is called when the branch commits.
	Retire(b *Branch)
	// Full reports whether the core's predictor cannot accept more
	// in-flight branches.
	Full(coreID int) bool
}

// NopHooks implements Hooks with no-ops.
type NopHooks struct{}

// Timestamp does nothing.
func (NopHooks) Timestamp(*Branch) {}

// Recover does nothing.
func (NopHooks) Recover(RecoveryInfo) {}

// SpecUpdate does nothing.
func (NopHooks) SpecUpdate(*Branch) {}

// Retire does nothing.
func (NopHooks) Retire(*Branch) {}

// Full always returns false.
func (NopHooks) Full(int) bool { return false }
