package sdk

// PublicRPCEndpoints is a list of known public RPC endpoints for mainnet, operated by
// guardian nodes.
var PublicRPCEndpoints = []string{
	"https://wormhole-v2-mainnet-api.certus.one",
	"https://wormhole.inotel.ro",
	"https://wormhole-v2-mainnet-api.mcf.rocks",
	"https://wormhole-v2-mainnet-api.chainlayer.network",
	"https://wormhole-v2-mainnet-api.staking.fund",
	"https://wormhole-v2-mainnet.01node.com",
}

// Guardian-set authority for a governance VAA is established purely by guardian-set
// quorum over its signatures (see verifier.Bridge.verifyGovernanceVAA) - unlike the
// token bridge, the Core module does not additionally restrict which emitter address
// a governance VAA may come from, so no emitter registry is needed here.
