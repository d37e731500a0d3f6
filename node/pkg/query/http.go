package query

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/vaanet/guardian-core/node/pkg/processor"
	"github.com/vaanet/guardian-core/sdk/vaa"
)

// Handler serves GET /v1/signed_vaa/{chain}/{emitter_hex}/{sequence}, per
// the illustrative HTTP surface: 200 on Ready, 202 on Aggregating, 404 with
// a stable VAA_NOT_FOUND code otherwise, 400 on a malformed address.
type Handler struct {
	Aggregator *processor.Aggregator
	Store      Store
}

// Router builds the mux.Router exposing Handler's single route.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/v1/signed_vaa/{chain}/{emitter_hex}/{sequence}", h.serveSignedVAA).Methods(http.MethodGet)
	return r
}

type signedVAAResponse struct {
	VAABytes string               `json:"vaaBytes,omitempty"`
	VAA      *vaa.VAA             `json:"vaa,omitempty"`
	Status   string               `json:"status,omitempty"`
	Progress *aggregatingProgress `json:"progress,omitempty"`
	Code     string               `json:"code,omitempty"`
}

type aggregatingProgress struct {
	Current  int `json:"current"`
	Required int `json:"required"`
}

func (h *Handler) serveSignedVAA(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	chainNum, err := strconv.ParseUint(vars["chain"], 10, 16)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, signedVAAResponse{Code: "INVALID_ADDRESS"})
		return
	}

	emitter, err := vaa.StringToAddress(vars["emitter_hex"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, signedVAAResponse{Code: "INVALID_ADDRESS"})
		return
	}

	sequence, err := strconv.ParseUint(vars["sequence"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, signedVAAResponse{Code: "INVALID_ADDRESS"})
		return
	}

	result, err := Lookup(h.Aggregator, h.Store, vaa.ChainID(chainNum), emitter, sequence)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, signedVAAResponse{Code: "INTERNAL"})
		return
	}

	switch result.Status {
	case StatusReady:
		raw, err := result.VAA.Marshal()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, signedVAAResponse{Code: "INTERNAL"})
			return
		}
		writeJSON(w, http.StatusOK, signedVAAResponse{VAABytes: hex.EncodeToString(raw), VAA: result.VAA})
	case StatusAggregating:
		writeJSON(w, http.StatusAccepted, signedVAAResponse{
			Status:   "aggregating",
			Progress: &aggregatingProgress{Current: result.Current, Required: result.Required},
		})
	default:
		writeJSON(w, http.StatusNotFound, signedVAAResponse{Code: "VAA_NOT_FOUND"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body signedVAAResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
