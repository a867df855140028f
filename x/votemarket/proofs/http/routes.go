package http

// Route patterns for the proofs HTTP surface.
const (
	routeBuildProof    = "/v1/proofs"
	routeProofsByGauge = "/v1/proofs/{protocol}/{gauge}"
	routeProofByKey    = "/v1/proofs/{protocol}/{gauge}/{epoch}"
	routeProtocols     = "/v1/protocols"
	routeCurrentEpoch  = "/v1/epochs/current"
	routeCalldata      = "/v1/calldata"
)

// Route names for mux URL building.
const (
	routeNameBuildProof    = "proofs_build"
	routeNameProofsByGauge = "proofs_by_gauge"
	routeNameProofByKey    = "proofs_by_key"
	routeNameProtocols     = "proofs_protocols"
	routeNameCurrentEpoch  = "proofs_current_epoch"
	routeNameCalldata      = "proofs_calldata"
)
