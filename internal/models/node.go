package models

// Node describes a registered quorum network participant: where to reach it
// and the key material it signs with. Nodes are created once, in bulk, by the
// first-run bootstrap.
type Node struct {
	ID                int64  `json:"id"`
	UserID            int64  `json:"userId"`
	Name              string `json:"name"`
	Host              string `json:"host"`
	RPCPort           int    `json:"rpcPort"`
	ConstellationPort int    `json:"constellationPort"`
	Address           string `json:"address"`
	PublicKey         string `json:"publicKey"`
	Active            bool   `json:"active"`
}
