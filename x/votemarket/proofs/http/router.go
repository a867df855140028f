package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Register binds stdlib mux routes. Path parameters are unsupported
// there, so only the flat routes are exposed.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc(routeBuildProof, h.handleBuild)
	mux.HandleFunc(routeProtocols, h.handleProtocols)
	mux.HandleFunc(routeCurrentEpoch, h.handleCurrentEpoch)
	mux.HandleFunc(routeCalldata, h.handleCalldata)
}

// RegisterMux binds gorilla/mux routes.
func (h *Handler) RegisterMux(r *mux.Router) {
	r.HandleFunc(routeBuildProof, h.handleBuild).
		Methods(http.MethodPost).
		Name(routeNameBuildProof)
	r.HandleFunc(routeProofsByGauge, h.handleProofsByGauge).
		Methods(http.MethodGet).
		Name(routeNameProofsByGauge)
	r.HandleFunc(routeProofByKey, h.handleProofByKey).
		Methods(http.MethodGet).
		Name(routeNameProofByKey)
	r.HandleFunc(routeProtocols, h.handleProtocols).
		Methods(http.MethodGet).
		Name(routeNameProtocols)
	r.HandleFunc(routeCurrentEpoch, h.handleCurrentEpoch).
		Methods(http.MethodGet).
		Name(routeNameCurrentEpoch)
	r.HandleFunc(routeCalldata, h.handleCalldata).
		Methods(http.MethodPost).
		Name(routeNameCalldata)
}
