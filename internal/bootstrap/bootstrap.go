// Package bootstrap seeds default users, roles, and the quorum node registry
// on first run. It executes once at process start, before the HTTP server
// accepts traffic, and is idempotent: when records already exist each phase
// logs and skips. It must not run concurrently with itself or with live
// traffic; the count gates are check-then-act.
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/qnetdash/quorum-dashboard-be/internal/auth"
	"github.com/qnetdash/quorum-dashboard-be/internal/models"
	"github.com/qnetdash/quorum-dashboard-be/internal/storage"
)

// portPairFormat is the accepted shape of the QUORUM_INIT_*_PORTS variables.
const portPairFormat = `"nodeId:port[,nodeId:port...]"`

// defaultOwnerID owns seeded nodes when user seeding was skipped because
// users already existed. The first bootstrap always creates the admin first,
// so id 1 is the admin in any database this code has seeded.
const defaultOwnerID int64 = 1

// ConfigError marks malformed or incomplete bootstrap configuration.
// It is fatal: the caller aborts startup instead of serving with a partial
// node registry.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "bootstrap configuration: " + e.Reason
}

func configErrorf(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// Result reports which seeding phases actually ran.
type Result struct {
	UsersSeeded bool
	NodesSeeded bool
}

// Run executes both seeding phases in order. Users and roles are seeded
// before nodes because node records reference the owning user.
func Run(ctx context.Context, store storage.Store, hasher *auth.Hasher, cfg Config) (Result, error) {
	var res Result

	seeded, adminID, err := seedUsers(ctx, store, hasher, cfg)
	if err != nil {
		return res, err
	}
	res.UsersSeeded = seeded
	if adminID == 0 {
		adminID = defaultOwnerID
	}

	res.NodesSeeded, err = seedNodes(ctx, store, cfg, adminID)
	if err != nil {
		return res, err
	}
	return res, nil
}

// seedUsers creates the {admin, party} roles and users on first run.
// Returns the admin user id when seeding happened.
func seedUsers(ctx context.Context, store storage.Store, hasher *auth.Hasher, cfg Config) (bool, int64, error) {
	count, err := store.CountUsers(ctx)
	if err != nil {
		return false, 0, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		log.Println("bootstrap: at least one user exists - skipping the init process")
		return false, 0, nil
	}
	log.Println("bootstrap: first run - default users are being created")

	if err := store.CreateRoles(ctx, []string{models.RoleAdmin, models.RoleParty}); err != nil {
		return false, 0, fmt.Errorf("create roles: %w", err)
	}

	admin, err := createUserWithRole(ctx, store, hasher, cfg.AdminEmail, cfg.AdminPassword, models.RoleAdmin)
	if err != nil {
		return false, 0, err
	}
	if _, err := createUserWithRole(ctx, store, hasher, cfg.PartyEmail, cfg.PartyPassword, models.RoleParty); err != nil {
		return false, 0, err
	}
	return true, admin.ID, nil
}

// createUserWithRole creates a confirmed user and attaches the named role.
// The role is re-fetched by name because bulk creation does not hand back
// usable identifiers for the attach step.
func createUserWithRole(ctx context.Context, store storage.Store, hasher *auth.Hasher, email, password, roleName string) (models.User, error) {
	hash, err := hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash %s password: %w", roleName, err)
	}
	user, err := store.CreateUser(ctx, models.User{
		Email:        email,
		PasswordHash: hash,
		IsConfirmed:  true,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("create %s user: %w", roleName, err)
	}
	role, err := store.FindRoleByName(ctx, roleName)
	if err != nil {
		return models.User{}, fmt.Errorf("find role %s: %w", roleName, err)
	}
	if err := store.AttachRole(ctx, user.ID, role.ID); err != nil {
		return models.User{}, fmt.Errorf("attach role %s: %w", roleName, err)
	}
	return user, nil
}

// seedNodes registers the initial quorum nodes on first run. Missing host or
// port lists soft-skip the phase; malformed present configuration is fatal.
func seedNodes(ctx context.Context, store storage.Store, cfg Config, ownerID int64) (bool, error) {
	count, err := store.CountNodes(ctx)
	if err != nil {
		return false, fmt.Errorf("count nodes: %w", err)
	}
	if count > 0 {
		log.Println("bootstrap: at least one node exists - skipping the nodes init process")
		return false, nil
	}
	log.Println("bootstrap: first run - initial quorum nodes are being registered")

	switch {
	case cfg.Host == "":
		log.Println("bootstrap: QUORUM_INIT_HOST env var not provided - skipping nodes init process")
		return false, nil
	case cfg.RPCPorts == "":
		log.Println("bootstrap: QUORUM_INIT_RPC_PORTS env var not provided - skipping nodes init process")
		return false, nil
	case cfg.ConstellationPorts == "":
		log.Println("bootstrap: QUORUM_INIT_CONSTELLATION_PORTS env var not provided - skipping nodes init process")
		return false, nil
	}

	rpcEntries, err := parsePortPairs(cfg.RPCPorts, "QUORUM_INIT_RPC_PORTS")
	if err != nil {
		return false, err
	}
	constellationPorts, err := parsePortPairs(cfg.ConstellationPorts, "QUORUM_INIT_CONSTELLATION_PORTS")
	if err != nil {
		return false, err
	}

	addresses, err := genesisAllocAddresses(cfg.genesisPath())
	if err != nil {
		return false, err
	}

	nodes := make([]models.Node, 0, len(rpcEntries))
	for _, entry := range rpcEntries {
		constellationPort, ok := findPort(constellationPorts, entry.id)
		if !ok {
			return false, configErrorf("no constellation port entry for node id %d", entry.id)
		}
		publicKey, err := readPublicKey(cfg.keyPath(entry.id), entry.id)
		if err != nil {
			return false, err
		}
		// Addresses are assigned positionally: node id n gets the (n-1)-th
		// allocation key in genesis file order. Keep the genesis allocation
		// order and node id numbering in sync.
		if entry.id < 1 || entry.id > len(addresses) {
			return false, configErrorf("no genesis allocation address for node id %d (%d addresses available)", entry.id, len(addresses))
		}
		nodes = append(nodes, models.Node{
			UserID:            ownerID,
			Name:              "node" + strconv.Itoa(entry.id),
			Host:              cfg.Host,
			RPCPort:           entry.port,
			ConstellationPort: constellationPort,
			Address:           addresses[entry.id-1],
			PublicKey:         publicKey,
			Active:            true,
		})
	}

	if err := store.CreateNodes(ctx, nodes); err != nil {
		return false, fmt.Errorf("register nodes: %w", err)
	}
	log.Printf("bootstrap: registered %d quorum nodes", len(nodes))
	return true, nil
}

type portEntry struct {
	id   int
	port int
}

// parsePortPairs parses a comma-separated id:port list. Any malformed entry
// is a fatal configuration error; partial node registration is unsafe
// because addresses are positionally derived.
func parsePortPairs(raw, varName string) ([]portEntry, error) {
	pairs := strings.Split(raw, ",")
	entries := make([]portEntry, 0, len(pairs))
	for _, pair := range pairs {
		parts := strings.Split(pair, ":")
		if len(parts) != 2 {
			return nil, configErrorf("wrong %s value format. Expected: %s", varName, portPairFormat)
		}
		id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, configErrorf("wrong %s value format. Expected: %s", varName, portPairFormat)
		}
		port, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, configErrorf("wrong %s value format. Expected: %s", varName, portPairFormat)
		}
		entries = append(entries, portEntry{id: id, port: port})
	}
	return entries, nil
}

func findPort(entries []portEntry, id int) (int, bool) {
	for _, e := range entries {
		if e.id == id {
			return e.port, true
		}
	}
	return 0, false
}

func readPublicKey(path string, nodeID int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil || len(strings.TrimSpace(string(data))) == 0 {
		return "", configErrorf("could not read the public key from %s for node with id %d", path, nodeID)
	}
	return string(data), nil
}
