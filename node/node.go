package node

import (
	"ixichain/block"
	"ixichain/cfg"
	"ixichain/db"
	"ixichain/ec"
	"ixichain/rpc"
	"ixichain/util"
	"ixichain/util/log"
	"ixichain/wallet"

	"context"
	"path/filepath"
	"time"
)

// Node is the highest level interface to a full node. It includes all
// configuration information and running services.
type Node struct {
	util.BaseService

	config *cfg.Config

	identity *wallet.Identity
	wallets  *wallet.Registry
	crypto   ec.Adapter

	blockDb    db.KvDb
	blockStore *block.Store

	gateway *rpc.Gateway
}

// NewNode returns a new, ready to go, Node.
func NewNode(config *cfg.Config, logger log.Logger) (*Node, error) {
	blockDbPath := filepath.Join(config.DbPath, "block")
	blockDb, err := db.NewLevelDb(blockDbPath, 0, 0)
	if err != nil {
		return nil, err
	}
	blockStore := block.NewStore(blockDb)

	identity, err := wallet.LoadOrGenerateIdentity(config.WalletFile)
	if err != nil {
		return nil, err
	}
	wallets := wallet.NewRegistry(identity)

	gwLogger := logger.With("module", "rpc")
	gateway := rpc.NewGateway(config.Rpc.ListenAddr, config.Rpc.AuthUsers, gwLogger)
	gateway.Route("GET", "/block/{num}", rpc.BlockHandler{Store: blockStore})
	gateway.Route("GET", "/height", rpc.HeightHandler{Store: blockStore})
	gateway.Route("GET", "/version", rpc.VersionHandler{})

	node := &Node{
		config: config,

		identity: identity,
		wallets:  wallets,
		crypto:   ec.RsaAdapter{},

		blockDb:    blockDb,
		blockStore: blockStore,

		gateway: gateway,
	}
	node.BaseService.Init(logger, "Node", node)
	return node, nil
}

// OnStart starts the Node's RPC gateway. It implements util.Service.
func (n *Node) OnStart() error {
	errCh := make(chan error, 1)
	go func() {
		if err := n.gateway.Start(); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// OnStop stops the Node. It implements util.Service.
func (n *Node) OnStop() {
	n.Logger.Info("Stopping Node")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := n.gateway.Shutdown(ctx); err != nil {
		n.Logger.Error("Error stopping RPC gateway", "err", err)
	}

	n.blockDb.Close()
}

// BlockStore returns the Node's block store.
func (n *Node) BlockStore() *block.Store {
	return n.blockStore
}

// Identity returns the Node's own signing identity.
func (n *Node) Identity() *wallet.Identity {
	return n.identity
}

// Wallets returns the Node's address-to-public-key registry.
func (n *Node) Wallets() *wallet.Registry {
	return n.wallets
}

// Crypto returns the CryptoAdapter this Node signs and verifies with.
func (n *Node) Crypto() ec.Adapter {
	return n.crypto
}
