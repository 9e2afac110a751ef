package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/qnetdash/quorum-dashboard-be/internal/auth"
	"github.com/qnetdash/quorum-dashboard-be/internal/models"
	"github.com/qnetdash/quorum-dashboard-be/internal/storage/memory"
)

func testHasher() *auth.Hasher {
	return auth.NewHasher(bcrypt.MinCost)
}

func baseConfig() Config {
	return Config{
		AdminEmail:    "admin@test.local",
		AdminPassword: "admin-pass",
		PartyEmail:    "party@test.local",
		PartyPassword: "party-pass",
	}
}

// writeQuorumConfig lays out key files and a genesis file under a temp dir.
// The genesis alloc keys are written in the given order.
func writeQuorumConfig(t *testing.T, keys map[int]string, addresses []string) string {
	t.Helper()
	dir := t.TempDir()
	keyDir := filepath.Join(dir, "constellation", "keys")
	require.NoError(t, os.MkdirAll(keyDir, 0o755))
	for id, key := range keys {
		path := filepath.Join(keyDir, "tm"+strconv.Itoa(id)+".pub")
		require.NoError(t, os.WriteFile(path, []byte(key), 0o644))
	}

	genesis := `{"config":{"chainId":10,"isQuorum":true},"alloc":{`
	for i, addr := range addresses {
		if i > 0 {
			genesis += ","
		}
		genesis += `"` + addr + `":{"balance":"1000000000"}`
	}
	genesis += `},"gasLimit":"0xE0000000"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "genesis-raft.json"), []byte(genesis), 0o644))
	return dir
}

func TestRun_SeedsUsersAndRoles(t *testing.T) {
	store := memory.NewStore()
	cfg := baseConfig()

	res, err := Run(context.Background(), store, testHasher(), cfg)
	require.NoError(t, err)
	require.True(t, res.UsersSeeded)
	require.False(t, res.NodesSeeded)

	admin, err := store.FindUserByEmail(context.Background(), "admin@test.local")
	require.NoError(t, err)
	require.True(t, admin.IsConfirmed)
	require.Equal(t, []string{models.RoleAdmin}, admin.Roles)
	ok, err := testHasher().Verify("admin-pass", admin.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)

	party, err := store.FindUserByEmail(context.Background(), "party@test.local")
	require.NoError(t, err)
	require.Equal(t, []string{models.RoleParty}, party.Roles)
}

func TestRun_SecondRunIsNoOp(t *testing.T) {
	store := memory.NewStore()
	keys := map[int]string{1: "key-one"}
	cfg := baseConfig()
	cfg.Host = "10.0.0.5"
	cfg.RPCPorts = "1:21000"
	cfg.ConstellationPorts = "1:9001"
	cfg.ConfigDir = writeQuorumConfig(t, keys, []string{"0xaaa"})

	first, err := Run(context.Background(), store, testHasher(), cfg)
	require.NoError(t, err)
	require.True(t, first.UsersSeeded)
	require.True(t, first.NodesSeeded)

	second, err := Run(context.Background(), store, testHasher(), cfg)
	require.NoError(t, err)
	require.False(t, second.UsersSeeded)
	require.False(t, second.NodesSeeded)

	count, err := store.CountUsers(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
	require.Len(t, store.Nodes(), 1)
}

func TestRun_SeedsNodes(t *testing.T) {
	store := memory.NewStore()
	keys := map[int]string{1: "constellation-key-1", 2: "constellation-key-2"}
	cfg := baseConfig()
	cfg.Host = "quorum.internal"
	cfg.RPCPorts = "1:21000,2:21001"
	cfg.ConstellationPorts = "1:9001,2:9002"
	cfg.ConfigDir = writeQuorumConfig(t, keys, []string{"0xfirst", "0xsecond"})

	res, err := Run(context.Background(), store, testHasher(), cfg)
	require.NoError(t, err)
	require.True(t, res.NodesSeeded)

	nodes := store.Nodes()
	require.Len(t, nodes, 2)

	admin, err := store.FindUserByEmail(context.Background(), "admin@test.local")
	require.NoError(t, err)

	require.Equal(t, "node1", nodes[0].Name)
	require.Equal(t, "quorum.internal", nodes[0].Host)
	require.Equal(t, 21000, nodes[0].RPCPort)
	require.Equal(t, 9001, nodes[0].ConstellationPort)
	require.Equal(t, "0xfirst", nodes[0].Address)
	require.Equal(t, "constellation-key-1", nodes[0].PublicKey)
	require.Equal(t, admin.ID, nodes[0].UserID)
	require.True(t, nodes[0].Active)

	require.Equal(t, "node2", nodes[1].Name)
	require.Equal(t, 21001, nodes[1].RPCPort)
	require.Equal(t, 9002, nodes[1].ConstellationPort)
	require.Equal(t, "0xsecond", nodes[1].Address)
}

func TestRun_MalformedPortsIsFatal(t *testing.T) {
	store := memory.NewStore()
	cfg := baseConfig()
	cfg.Host = "quorum.internal"
	cfg.RPCPorts = "1-21000"
	cfg.ConstellationPorts = "1:9001"
	cfg.ConfigDir = writeQuorumConfig(t, map[int]string{1: "k"}, []string{"0xaaa"})

	_, err := Run(context.Background(), store, testHasher(), cfg)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	require.Contains(t, cerr.Reason, "QUORUM_INIT_RPC_PORTS")
	require.Contains(t, cerr.Reason, `"nodeId:port[,nodeId:port...]"`)
	require.Empty(t, store.Nodes())
}

func TestRun_MissingHostSkipsNodeSeeding(t *testing.T) {
	store := memory.NewStore()
	cfg := baseConfig()
	cfg.RPCPorts = "1:21000"
	cfg.ConstellationPorts = "1:9001"

	res, err := Run(context.Background(), store, testHasher(), cfg)
	require.NoError(t, err)
	require.True(t, res.UsersSeeded)
	require.False(t, res.NodesSeeded)
	require.Empty(t, store.Nodes())
}

func TestRun_MissingConstellationEntryIsFatal(t *testing.T) {
	store := memory.NewStore()
	cfg := baseConfig()
	cfg.Host = "quorum.internal"
	cfg.RPCPorts = "1:21000,2:21001"
	cfg.ConstellationPorts = "1:9001"
	cfg.ConfigDir = writeQuorumConfig(t, map[int]string{1: "k1", 2: "k2"}, []string{"0xa", "0xb"})

	_, err := Run(context.Background(), store, testHasher(), cfg)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	require.Contains(t, cerr.Reason, "node id 2")
	require.Empty(t, store.Nodes())
}

func TestRun_EmptyKeyFileIsFatal(t *testing.T) {
	store := memory.NewStore()
	cfg := baseConfig()
	cfg.Host = "quorum.internal"
	cfg.RPCPorts = "1:21000"
	cfg.ConstellationPorts = "1:9001"
	cfg.ConfigDir = writeQuorumConfig(t, map[int]string{1: "   "}, []string{"0xa"})

	_, err := Run(context.Background(), store, testHasher(), cfg)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	require.Contains(t, cerr.Reason, "tm1.pub")
	require.Contains(t, cerr.Reason, "id 1")
	require.Empty(t, store.Nodes())
}

func TestRun_MissingKeyFileIsFatal(t *testing.T) {
	store := memory.NewStore()
	cfg := baseConfig()
	cfg.Host = "quorum.internal"
	cfg.RPCPorts = "1:21000,3:21002"
	cfg.ConstellationPorts = "1:9001,3:9003"
	cfg.ConfigDir = writeQuorumConfig(t, map[int]string{1: "k1"}, []string{"0xa", "0xb", "0xc"})

	_, err := Run(context.Background(), store, testHasher(), cfg)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	require.Contains(t, cerr.Reason, "tm3.pub")
}

func TestRun_AddressIndexOutOfRangeIsFatal(t *testing.T) {
	store := memory.NewStore()
	cfg := baseConfig()
	cfg.Host = "quorum.internal"
	cfg.RPCPorts = "1:21000,2:21001"
	cfg.ConstellationPorts = "1:9001,2:9002"
	// Only one allocation for two nodes.
	cfg.ConfigDir = writeQuorumConfig(t, map[int]string{1: "k1", 2: "k2"}, []string{"0xonly"})

	_, err := Run(context.Background(), store, testHasher(), cfg)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	require.Contains(t, cerr.Reason, "node id 2")
	require.Empty(t, store.Nodes())
}

func TestGenesisAllocAddresses_PreservesFileOrder(t *testing.T) {
	t.Parallel()

	dir := writeQuorumConfig(t, nil, []string{"0xccc", "0xaaa", "0xbbb"})
	addresses, err := genesisAllocAddresses(filepath.Join(dir, "genesis-raft.json"))
	require.NoError(t, err)
	require.Equal(t, []string{"0xccc", "0xaaa", "0xbbb"}, addresses)
}

func TestGenesisAllocAddresses_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := genesisAllocAddresses(filepath.Join(t.TempDir(), "genesis-raft.json"))
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
}

func TestConfigFromEnv_Fallbacks(t *testing.T) {
	for _, key := range []string{
		"ADMIN_EMAIL", "ADMIN_PASSWORD", "PARTY_EMAIL", "PARTY_PASSWORD",
		"QUORUM_INIT_HOST", "QUORUM_INIT_RPC_PORTS", "QUORUM_INIT_CONSTELLATION_PORTS",
		"QUORUM_CONFIG_DIR",
	} {
		t.Setenv(key, "")
	}

	cfg := ConfigFromEnv()
	require.Equal(t, DefaultAdminEmail, cfg.AdminEmail)
	require.Equal(t, DefaultAdminPassword, cfg.AdminPassword)
	require.Equal(t, DefaultPartyEmail, cfg.PartyEmail)
	require.Equal(t, DefaultPartyPassword, cfg.PartyPassword)
	require.Empty(t, cfg.Host)
	require.Equal(t, "quorum-config", cfg.ConfigDir)
}

func TestConfigFromEnv_ReadsValues(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "root@corp.local")
	t.Setenv("ADMIN_PASSWORD", "hunter2")
	t.Setenv("QUORUM_INIT_HOST", "10.1.2.3")
	t.Setenv("QUORUM_INIT_RPC_PORTS", "1:21000")
	t.Setenv("QUORUM_INIT_CONSTELLATION_PORTS", "1:9001")

	cfg := ConfigFromEnv()
	require.Equal(t, "root@corp.local", cfg.AdminEmail)
	require.Equal(t, "hunter2", cfg.AdminPassword)
	require.Equal(t, "10.1.2.3", cfg.Host)
	require.Equal(t, "1:21000", cfg.RPCPorts)
	require.Equal(t, "1:9001", cfg.ConstellationPorts)
}
