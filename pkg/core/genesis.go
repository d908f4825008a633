package core

// GenesisPrevHash is the previous-hash marker carried by the genesis block
const GenesisPrevHash = "0"

// genesisTimestamp pins the canonical genesis block to a fixed instant so
// every node reproduces it byte for byte.
const genesisTimestamp int64 = 1231006505000

// GenesisBlock returns the canonical empty genesis block. Every chain starts
// from this exact block and IsChainValid compares against it structurally.
func GenesisBlock() *Block {
	return NewBlock(0, nil, GenesisPrevHash, genesisTimestamp)
}
