package devnet

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/TEENet-io/devchain/simnode"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testArtifactsDir = "testdata/artifacts"

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.ArtifactsDir = testArtifactsDir
	cfg.PollInterval = 10 * time.Millisecond
	cfg.ConfirmationTimeout = time.Second
	return cfg
}

// newSimnodeRuntime returns a runtime talking to an in-process simnode.
func newSimnodeRuntime(t *testing.T, nodeCfg *simnode.Config, cfg *Config) (*Runtime, *simnode.Node) {
	t.Helper()

	node, err := simnode.New(nodeCfg)
	require.NoError(t, err)
	c := node.Client()
	t.Cleanup(func() {
		c.Close()
		node.Close()
	})

	if cfg == nil {
		cfg = testConfig()
	}
	return NewWithBackend(cfg, c, ethclient.NewClient(c)), node
}

func TestNew(t *testing.T) {
	node, err := simnode.New(nil)
	require.NoError(t, err)
	defer node.Close()
	srv := httptest.NewServer(node.Server())
	defer srv.Close()

	cfg := testConfig()
	cfg.RPCURL = srv.URL
	rt, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer rt.Close()

	chainID, err := rt.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, node.ChainID(), chainID)
	assert.Equal(t, srv.URL, rt.Config().RPCURL)
	assert.NotNil(t, rt.NameTags())

	// closing twice is fine
	rt.Close()
	rt.Close()
}

func TestNewErrors(t *testing.T) {
	cfg := testConfig()
	cfg.RPCURL = ""
	_, err := New(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrMissingRPCURL)

	// nothing listens there
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	cfg.RPCURL = url
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), url)
}

func TestNilRuntime(t *testing.T) {
	var rt *Runtime
	ctx := context.Background()

	assert.ErrorIs(t, rt.Impersonate(ctx, addr(1)), ErrNoRuntime)
	assert.ErrorIs(t, rt.StopImpersonating(ctx, addr(1)), ErrNoRuntime)
	assert.ErrorIs(t, rt.SetBalance(ctx, addr(1), 1), ErrNoRuntime)
	assert.ErrorIs(t, rt.ResetFork(ctx), ErrNoRuntime)
	assert.ErrorIs(t, rt.ResetForkTo(ctx, 1), ErrNoRuntime)

	_, err := rt.MineBlock(ctx, 1)
	assert.ErrorIs(t, err, ErrNoRuntime)
	_, err = rt.MineBlocks(ctx, 10, 1)
	assert.ErrorIs(t, err, ErrNoRuntime)
	_, err = rt.Artifact("Example")
	assert.ErrorIs(t, err, ErrNoRuntime)
	_, err = rt.Deploy(ctx, "Example", nil, 0)
	assert.ErrorIs(t, err, ErrNoRuntime)
	_, err = rt.Accounts(ctx)
	assert.ErrorIs(t, err, ErrNoRuntime)

	assert.Equal(t, "", rt.ForkingURL())
	assert.Equal(t, uint64(0), rt.ForkingBlockNumber())

	// must not panic
	rt.Tag(addr(1).Hex(), "nobody")
	rt.Close()

	// a runtime without a provider is just as unusable
	rt = NewWithBackend(testConfig(), nil, nil)
	assert.ErrorIs(t, rt.Impersonate(ctx, addr(1)), ErrNoRuntime)
	_, err = rt.BlockNumber(ctx)
	assert.ErrorIs(t, err, ErrNoRuntime)
}

func TestTag(t *testing.T) {
	rt := NewWithBackend(testConfig(), nil, nil)

	rt.Tag(addr(1).Hex(), "Vault")
	rt.Tag("not an address", "Broken")
	rt.Tag(addr(2).Hex(), "")

	tags := rt.NameTags()
	require.NotNil(t, tags)
	assert.Equal(t, 1, tags.Len())
	name, ok := tags.NameTag(addr(1))
	assert.True(t, ok)
	assert.Equal(t, "Vault", name)

	cfg := testConfig()
	cfg.Tracer = false
	rt = NewWithBackend(cfg, nil, nil)
	assert.Nil(t, rt.NameTags())
	rt.Tag(addr(1).Hex(), "Vault")
}

func TestArtifact(t *testing.T) {
	rt := NewWithBackend(testConfig(), nil, nil)

	art, err := rt.Artifact("Example")
	require.NoError(t, err)
	assert.Equal(t, "contracts/Example.sol", art.SourceName)
	assert.Equal(t, "Example", art.ContractName)
	assert.Contains(t, art.ABI.Methods, "answer")

	_, err = rt.Artifact("Missing")
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.RPCURL = ""
	cfg.SecondsPerBlock = 0
	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrMissingRPCURL)
	assert.ErrorIs(t, err, ErrInvalidBlockTime)

	cfg = DefaultConfig()
	cfg.PollInterval = 0
	assert.Error(t, cfg.Validate())
}

func TestNewWithBackendDefaults(t *testing.T) {
	cfg := testConfig()
	cfg.PollInterval = 0
	cfg.ConfirmationTimeout = 0

	rt := NewWithBackend(cfg, nil, nil)
	assert.Equal(t, DefaultPollInterval, rt.Config().PollInterval)
	assert.Equal(t, DefaultConfirmationTimeout, rt.Config().ConfirmationTimeout)
	// the caller's config is left alone
	assert.Equal(t, time.Duration(0), cfg.PollInterval)

	rt = NewWithBackend(nil, nil, nil)
	assert.Equal(t, DefaultRPCURL, rt.Config().RPCURL)
}
