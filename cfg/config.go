package cfg

import (
	"ixichain/chain"

	"io/ioutil"
	"path"
	"path/filepath"
	"github.com/BurntSushi/toml"
)

const _DEFAULT_DATA_DIR = "data"

type Config struct {
	BaseConfig

	Rpc   *RpcConfig
	Chain *ChainConfig
}

type BaseConfig struct {
        ChainId string

        RootDir string

        WalletFile string

        DbPath string

	LogLevel string
}

// RpcConfig configures the HTTP API gateway.
type RpcConfig struct {
	ListenAddr string

	// AuthUsers maps Basic-Auth usernames to passwords. Empty disables
	// auth entirely.
	AuthUsers map[string]string
}

// ChainConfig holds the domain parameters a node enforces on blocks it
// produces or accepts; see chain.BlockVerV2/BlockVerV4 and friends for
// the protocol-wide constants that are not configurable per node.
type ChainConfig struct {
	GenesisBlockVersion int32
	SuperBlockInterval  uint64
	MinDifficulty       uint64
}

func DefaultRpcConfig() *RpcConfig {
	return &RpcConfig{
		ListenAddr: "0.0.0.0:8765",
		AuthUsers:  map[string]string{},
	}
}

func DefaultChainConfig() *ChainConfig {
	return &ChainConfig{
		GenesisBlockVersion: chain.BlockVerV4 + 1,
		SuperBlockInterval:  chain.SuperBlockInterval,
		MinDifficulty:       chain.MinDifficulty,
	}
}

func defaultConfig() *Config {
	config := &Config{}
	config.Rpc = DefaultRpcConfig()
	config.Chain = DefaultChainConfig()
	return config
}

func adjustPath(dir string, path *string) bool {
	if len(*path) == 0 {
		return false
	}

	if filepath.IsAbs(*path) {
		return false
	}

	*path = filepath.Join(dir, *path)
	return true
}

func LoadConfig(pathname string) (*Config, error) {
	bz, err := ioutil.ReadFile(pathname)
	if err != nil {
		return nil, err
	}

	config := Config{}
	_, err = toml.Decode(string(bz), &config)
	if err != nil {
		return nil, err
	}

	configDir := path.Dir(pathname)
	if configDir != "." {
		adjustPath(configDir, &config.WalletFile)
		adjustPath(configDir, &config.DbPath)
	}
	return &config, nil
}

// ResetTestRoot returns a fresh Config rooted at a temp directory
// named after root, suitable for tests that need a working WalletFile
// and DbPath without colliding with other test runs.
func ResetTestRoot(root string) *Config {
	rootDir, err := ioutil.TempDir("", "ixichain-"+root)
	if err != nil {
		panic(err)
	}

	config := defaultConfig()
	config.ChainId = "test-chain"
	config.RootDir = rootDir
	config.WalletFile = filepath.Join(rootDir, "wallet.dat")
	config.DbPath = filepath.Join(rootDir, _DEFAULT_DATA_DIR)
	config.Rpc.ListenAddr = "127.0.0.1:0"
	return config
}

