package bootstrap

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Documented defaults used when admin/party credentials are not supplied.
// Deployments are expected to override these; the fallback is logged.
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "admin"
	DefaultPartyEmail    = "party@example.com"
	DefaultPartyPassword = "party"

	defaultConfigDir = "quorum-config"
)

// Config collects everything the first-run seeding needs. Construct it with
// ConfigFromEnv or fill it directly in tests.
type Config struct {
	AdminEmail    string
	AdminPassword string
	PartyEmail    string
	PartyPassword string

	// Host and the raw port lists drive node registration. Any of them being
	// empty soft-skips node seeding; malformed content is fatal.
	Host               string
	RPCPorts           string
	ConstellationPorts string

	// ConfigDir holds the genesis file and constellation key files.
	ConfigDir string
}

// ConfigFromEnv reads the bootstrap environment. Missing credentials fall
// back to the documented defaults with a warning; missing quorum variables
// are left empty and handled by the node-seeding soft-skip.
func ConfigFromEnv() Config {
	return Config{
		AdminEmail:         envOrDefault("ADMIN_EMAIL", DefaultAdminEmail, true),
		AdminPassword:      envOrDefault("ADMIN_PASSWORD", DefaultAdminPassword, false),
		PartyEmail:         envOrDefault("PARTY_EMAIL", DefaultPartyEmail, true),
		PartyPassword:      envOrDefault("PARTY_PASSWORD", DefaultPartyPassword, false),
		Host:               strings.TrimSpace(os.Getenv("QUORUM_INIT_HOST")),
		RPCPorts:           strings.TrimSpace(os.Getenv("QUORUM_INIT_RPC_PORTS")),
		ConstellationPorts: strings.TrimSpace(os.Getenv("QUORUM_INIT_CONSTELLATION_PORTS")),
		ConfigDir:          envOrDefault("QUORUM_CONFIG_DIR", defaultConfigDir, true),
	}
}

// envOrDefault logs a warning when falling back. Secret values are never
// echoed into the log.
func envOrDefault(key, def string, logValue bool) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if logValue {
		log.Printf("bootstrap: %s env var not provided - using default: %s", key, def)
	} else {
		log.Printf("bootstrap: %s env var not provided - using the documented default", key)
	}
	return def
}

// genesisPath returns the location of the genesis allocation file.
func (c Config) genesisPath() string {
	return filepath.Join(c.ConfigDir, "genesis-raft.json")
}

// keyPath returns the constellation public key file for a node id.
func (c Config) keyPath(nodeID int) string {
	return filepath.Join(c.ConfigDir, "constellation", "keys", "tm"+strconv.Itoa(nodeID)+".pub")
}
