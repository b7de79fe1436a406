package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownerAddr = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFile(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	testAddr := crypto.PubkeyToAddress(key.PublicKey).Hex()
	testKey := hexutil.Encode(crypto.FromECDSA(key))

	path := writeConfig(t, fmt.Sprintf(`
label: unit
chain_id: 1001
kas:
  access_key_id: id
  secret_access_key: secret
smart_contract: "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"
owner:
  address: "%s"
test_accounts:
  - address: "%s"
    private_key: "%s"
watch:
  recipients: ["%s"]
`, ownerAddr, testAddr, testKey, testAddr))

	require.NoError(t, LoadFile(path, false))

	c := Get()
	assert.Equal(t, "unit", c.Label)
	assert.Equal(t, uint64(1001), c.ChainID)
	assert.Equal(t, uint64(DefaultGasLimit), c.GasLimit)
	assert.Equal(t, 1, c.Workers)
	assert.Equal(t, DefaultWatchSchedule, c.Watch.Schedule)
	assert.Equal(t, []string{DefaultNodeURL}, GetRPCs())
	assert.Equal(t, DefaultWalletURL, c.KAS.WalletURL)
	assert.False(t, JournalEnabled())

	acc, ok := FindAccount("owner")
	require.True(t, ok)
	assert.Equal(t, ownerAddr, acc.Address)

	acc, ok = FindAccount("test0")
	require.True(t, ok)
	assert.Equal(t, testAddr, acc.Address)
	assert.Equal(t, testKey, acc.PrivateKey)

	for _, name := range []string{"test1", "test0x", "test-1", "test+0", "test"} {
		_, ok = FindAccount(name)
		assert.False(t, ok, name)
	}

	acc, ok = FindAccount(testAddr)
	require.True(t, ok)
	assert.Equal(t, testKey, acc.PrivateKey)
}

func TestCheck(t *testing.T) {
	valid := func() Config {
		return Config{
			ChainID: 1001,
			RPCs:    []string{"127.0.0.1:8551"},
			KAS: KASConfig{
				AccessKeyID:     "id",
				SecretAccessKey: "secret",
				WalletURL:       DefaultWalletURL,
			},
			Workers: 1,
			Owner:   Account{Address: ownerAddr},
		}
	}

	c := valid()
	require.NoError(t, check(&c))

	const otherKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	cases := map[string]func(c *Config){
		"no chain id":       func(c *Config) { c.ChainID = 0 },
		"no workers":        func(c *Config) { c.Workers = 0 },
		"no kas secret":     func(c *Config) { c.KAS.SecretAccessKey = "" },
		"no rpc":            func(c *Config) { c.RPCs = nil },
		"bad contract":      func(c *Config) { c.SmartContract = "0x1234" },
		"bad owner":         func(c *Config) { c.Owner.Address = "owner" },
		"bad private key":   func(c *Config) { c.Owner.PrivateKey = "zz" },
		"bad recipient":     func(c *Config) { c.Watch.Recipients = []string{"nope"} },
		"key/addr mismatch": func(c *Config) { c.Owner.PrivateKey = otherKey },
	}

	for name, mutate := range cases {
		c := valid()
		mutate(&c)
		assert.Error(t, check(&c), name)
	}
}

func TestUpdate(t *testing.T) {
	c := Config{
		RPCs: []string{"127.0.0.1:8551", "https://node.example.com"},
		KAS:  KASConfig{WalletURL: "https://wallet.example.com/"},
	}
	update(&c)

	assert.Equal(t, []string{"http://127.0.0.1:8551", "https://node.example.com"}, c.RPCs)
	assert.Equal(t, "https://wallet.example.com", c.KAS.WalletURL)
}

func TestCheckAliyunMail(t *testing.T) {
	assert.Error(t, checkAliyunMail(AliyunMailConfig{}))
	assert.NoError(t, checkAliyunMail(AliyunMailConfig{
		AccountName:     "alert@example.com",
		Region:          "cn-hangzhou",
		AccessKeyID:     "id",
		AccessKeySecret: "secret",
		Receiver:        []string{"ops@example.com"},
	}))
}

func TestConfigChange(t *testing.T) {
	content := func(workers int, recipient string) string {
		return fmt.Sprintf(`
chain_id: 1001
workers: %d
kas:
  access_key_id: id
  secret_access_key: secret
owner:
  address: "%s"
watch:
  recipients: ["%s"]
`, workers, ownerAddr, recipient)
	}

	const (
		first  = "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"
		second = "0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB"
	)

	path := writeConfig(t, content(2, first))
	viper.SetConfigFile(path)
	setDefaults()
	require.NoError(t, reload(false))

	before := Get()
	require.Equal(t, 2, before.Workers)
	require.Equal(t, []string{first}, before.Watch.Recipients)

	event := fsnotify.Event{Name: path, Op: fsnotify.Write}

	require.NoError(t, os.WriteFile(path, []byte(content(0, second)), 0600))
	onConfigChange(event)
	assert.Equal(t, before, Get())

	require.NoError(t, os.WriteFile(path, []byte("chain_id: [1001"), 0600))
	onConfigChange(event)
	assert.Equal(t, before, Get())

	require.NoError(t, os.WriteFile(path, []byte(content(3, second)), 0600))
	onConfigChange(event)
	c := Get()
	assert.Equal(t, 3, c.Workers)
	assert.Equal(t, []string{second}, c.Watch.Recipients)
}
