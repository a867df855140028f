package proofs

// State labels the stages one assembly run moves through. A run only
// advances; on any error it lands in StateFailed and stays there.
type State string

const (
	StateInitialized          State = "initialized"
	StateHeaderFetched        State = "header_fetched"
	StateAccountProofFetched  State = "account_proof_fetched"
	StateStorageProofsFetched State = "storage_proofs_fetched"
	StateCrossChecked         State = "cross_checked"
	StateComplete             State = "complete"
	StateFailed               State = "failed"
)

// Failure reasons recorded when a run lands in StateFailed. These are
// stable labels shared by the journal, metrics and the API.
const (
	ReasonInvalidLayout           = "invalid_layout"
	ReasonHeaderInvalid           = "header_invalid"
	ReasonEpochInFuture           = "epoch_in_future"
	ReasonAccountProofUnavailable = "account_proof_unavailable"
	ReasonStorageProofUnavailable = "storage_proof_unavailable"
	ReasonProofKeyMismatch        = "proof_key_mismatch"
	ReasonCancelled               = "cancelled"
)
