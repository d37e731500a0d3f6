// Package adminrpc is the privileged, local-only operational surface used to
// construct and sign governance VAAs (guardian-set updates) on behalf of
// the guardian operating this node. It is adapted from the teacher's
// gRPC-shaped admin service down to its guardian-set-update construction
// logic: the generated protobuf service stubs it built on are not part of
// this core's retrieved dependency surface, so the privileged operation is
// exposed as a plain Go method instead of a gRPC service, while keeping the
// teacher's error-code mapping convention.
package adminrpc

import (
	"crypto/ecdsa"
	"errors"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vaanet/guardian-core/node/pkg/common"
	"github.com/vaanet/guardian-core/sdk/vaa"
)

// Server is the privileged admin surface bound to one guardian's signing
// key. It never touches gossip or chain watchers directly - it only
// constructs and signs governance VAAs for an operator to submit.
type Server struct {
	logger          *zap.Logger
	guardianKey     *ecdsa.PrivateKey
	currentSetIndex func() uint32
}

// New constructs a Server signing with guardianKey. currentSetIndex is
// called at VAA-construction time to stamp guardian_set_index.
func New(logger *zap.Logger, guardianKey *ecdsa.PrivateKey, currentSetIndex func() uint32) *Server {
	return &Server{logger: logger, guardianKey: guardianKey, currentSetIndex: currentSetIndex}
}

// GuardianSetUpdateRequest names the new roster an operator wants
// installed.
type GuardianSetUpdateRequest struct {
	NewIndex uint32
	Keys     []string // hex-encoded 20-byte addresses
}

// InjectGuardianSetUpdate builds and signs (under this node's own guardian
// index 0 - reaching quorum still requires the other guardians' signatures
// gathered out of band) a governance VAA installing the requested roster.
func (s *Server) InjectGuardianSetUpdate(req GuardianSetUpdateRequest, nonce uint32, sequence uint64, now time.Time) (*vaa.VAA, error) {
	if len(req.Keys) > common.MaxGuardianCount {
		return nil, status.Errorf(codes.InvalidArgument, "guardian set exceeds maximum size of %d", common.MaxGuardianCount)
	}

	body := vaa.BodyGuardianSetUpdate{NewIndex: req.NewIndex}
	for _, k := range req.Keys {
		addr, err := vaa.StringToAddress(k)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid guardian key %q: %v", k, err)
		}
		body.Keys = append(body.Keys, ethcommon.BytesToAddress(addr[12:]))
	}

	govVAA := vaa.CreateGovernanceVAA(now, nonce, sequence, s.currentSetIndex(), body.Serialize())
	if err := govVAA.AddSignature(s.guardianKey, 0); err != nil {
		return nil, mapErr(err)
	}

	s.logger.Info("constructed guardian set update governance VAA", zap.Uint32("new_index", req.NewIndex), zap.Int("key_count", len(req.Keys)))
	return govVAA, nil
}

// mapErr translates the sdk/vaa error taxonomy onto grpc status codes, the
// way the teacher's admin surface maps its own failures.
func mapErr(err error) error {
	switch {
	case errors.Is(err, vaa.ErrInvalidVAA), errors.Is(err, vaa.ErrInvalidAddress):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, vaa.ErrGuardianSetExpired), errors.Is(err, vaa.ErrBridgePaused):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, vaa.ErrVAAAlreadyConsumed):
		return status.Error(codes.AlreadyExists, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
