package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"petcoin/log"
	"petcoin/util"
	"strconv"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	// DefaultWalletURL is the KAS wallet api endpoint.
	DefaultWalletURL = "https://wallet-api.klaytnapi.com"
	// DefaultNodeURL is the KAS node api endpoint.
	DefaultNodeURL = "https://node-api.klaytnapi.com/v1/klaytn"
	// DefaultGasLimit is the gas sent with every contract execution.
	DefaultGasLimit = 1000000
	// DefaultWatchSchedule is the lock-up watcher cron expression.
	DefaultWatchSchedule = "@every 1m"
)

// Config is the full application configuration.
type Config struct {
	// Label sets log output prefix.
	Label string

	ChainID uint64   `mapstructure:"chain_id"`
	RPCs    []string `mapstructure:"rpc_url"`

	KAS KASConfig

	// SmartContract is the deployed token contract address.
	SmartContract string `mapstructure:"smart_contract"`
	// Artifact is the truffle build artifact, the embedded ABI is used if empty.
	Artifact string
	GasLimit uint64 `mapstructure:"gas_limit"`

	Owner        Account
	TestAccounts []Account `mapstructure:"test_accounts"`

	// Workers sets the number of goroutines used by the lock-up watcher.
	Workers int
	Watch   WatchConfig

	Log log.Config

	// MySQL configs. The transaction journal is disabled if Hostname is empty.
	User     string
	Password string
	Hostname string
	Port     string
	Database string

	MetricsAddr string `mapstructure:"metrics_addr"`

	// AliyunMail is an optional config which will be used in mail alert package.
	AliyunMail AliyunMailConfig `mapstructure:"aliyun_mail"`
}

// KASConfig holds Klaytn API Service credentials.
type KASConfig struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" json:"-"`
	WalletURL       string `mapstructure:"wallet_url"`
	NodeURL         string `mapstructure:"node_url"`
}

// Account is a configured address with an optional private key.
// Accounts without a key are managed by the KAS wallet.
type Account struct {
	Address    string
	PrivateKey string `mapstructure:"private_key" json:"-"`
}

// WatchConfig configures the lock-up release watcher.
type WatchConfig struct {
	Schedule   string
	Recipients []string
}

// AliyunMailConfig is the struct for aliyun mail configs.
type AliyunMailConfig struct {
	AccountName     string
	Region          string
	AccessKeyID     string
	AccessKeySecret string `json:"-"`
	Receiver        []string
}

var (
	cfg   Config
	cfgMu sync.RWMutex
)

// Load reads config from ./config or ../config.
func Load(display bool) error {
	viper.SetConfigName("config")
	viper.AddConfigPath("./config")
	// Incase test cases require loading configs.
	viper.AddConfigPath("../config")

	return loadAndWatch(display)
}

// LoadFile reads the given config file.
func LoadFile(path string, display bool) error {
	viper.SetConfigFile(path)
	return loadAndWatch(display)
}

func loadAndWatch(display bool) error {
	setDefaults()

	if err := reload(display); err != nil {
		return err
	}

	viper.WatchConfig()
	viper.OnConfigChange(onConfigChange)

	return nil
}

// reload reads the config file and replaces the current configuration
// only when the new one passes all checks.
func reload(display bool) error {
	if err := viper.ReadInConfig(); err != nil {
		return err
	}

	next, err := load(display)
	if err != nil {
		return err
	}

	if err := check(&next); err != nil {
		return err
	}

	update(&next)
	set(next)

	log.UpdatePrefix(GetLabel())

	return nil
}

func setDefaults() {
	viper.SetDefault("gas_limit", DefaultGasLimit)
	viper.SetDefault("workers", 1)
	viper.SetDefault("kas.wallet_url", DefaultWalletURL)
	viper.SetDefault("kas.node_url", DefaultNodeURL)
	viper.SetDefault("watch.schedule", DefaultWatchSchedule)
}

func load(display bool) (Config, error) {
	var next Config
	if err := viper.Unmarshal(&next); err != nil {
		return next, err
	}

	if display {
		configContent, _ := json.MarshalIndent(next, "", "    ")
		log.Println(string(configContent))
	}

	return next, nil
}

func update(c *Config) {
	if len(c.RPCs) == 0 && c.KAS.NodeURL != "" {
		c.RPCs = []string{c.KAS.NodeURL}
	}

	for i := 0; i < len(c.RPCs); i++ {
		rpc := c.RPCs[i]
		if !strings.HasPrefix(rpc, "http") {
			c.RPCs[i] = "http://" + rpc
		}
	}

	c.KAS.WalletURL = strings.TrimSuffix(c.KAS.WalletURL, "/")
}

func set(c Config) {
	cfgMu.Lock()
	cfg = c
	cfgMu.Unlock()
}

// Get returns a copy of current configuration.
func Get() Config {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg
}

// GetDbConnStr returns mysql connection string.
func GetDbConnStr() string {
	c := Get()
	str := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s",
		c.User,
		c.Password,
		c.Hostname,
		c.Port,
		c.Database,
	)

	params := []string{
		"charset=utf8mb4",
		"parseTime=True",
		"loc=Local",
	}

	if len(params) > 0 {
		str = fmt.Sprintf("%s?%s", str, strings.Join(params, "&"))
	}

	return str
}

// JournalEnabled reports if a mysql database is configured.
func JournalEnabled() bool {
	return Get().Hostname != ""
}

// GetLabel returns custome label as console output prefix.
func GetLabel() string {
	return Get().Label
}

// GetRPCs returns all rpc urls from config.
func GetRPCs() []string {
	return Get().RPCs
}

// GetGoroutines returns the number of working goroutines.
func GetGoroutines() int {
	return Get().Workers
}

// LoadAliyunMailConfig performs a basic check on aliyun mail config.
func LoadAliyunMailConfig() error {
	if err := checkAliyunMail(Get().AliyunMail); err != nil {
		return err
	}

	return nil
}

// GetAliyunMailConfig returns aliyun mail configs.
func GetAliyunMailConfig() AliyunMailConfig {
	return Get().AliyunMail
}

// FindAccount returns the account matching name or address.
// Names are "owner" and "test0".."testN".
func FindAccount(name string) (Account, bool) {
	c := Get()

	if name == "owner" {
		return c.Owner, c.Owner.Address != ""
	}

	if suffix, ok := strings.CutPrefix(name, "test"); ok {
		if idx, err := strconv.Atoi(suffix); err == nil && suffix[0] != '+' {
			if idx >= 0 && idx < len(c.TestAccounts) {
				return c.TestAccounts[idx], true
			}
			return Account{}, false
		}
	}

	if strings.EqualFold(c.Owner.Address, name) {
		return c.Owner, true
	}
	for _, acc := range c.TestAccounts {
		if strings.EqualFold(acc.Address, name) {
			return acc, true
		}
	}

	return Account{}, false
}

func check(c *Config) error {
	if err := checkWorker(c); err != nil {
		return err
	}

	if err := checkChain(c); err != nil {
		return err
	}

	if err := checkRPCs(c); err != nil {
		return err
	}

	if err := checkAccounts(c); err != nil {
		return err
	}

	return nil
}

func checkWorker(c *Config) error {
	if c.Workers < 1 {
		return errors.New("value of 'workers' must greater than or equal to 1")
	}
	return nil
}

func checkChain(c *Config) error {
	if c.ChainID == 0 {
		return errors.New("'chain_id' must be set, e.g. 1001 for baobab or 8217 for cypress")
	}

	if c.KAS.AccessKeyID == "" || c.KAS.SecretAccessKey == "" {
		return errors.New("kas access key id and secret access key cannot be empty")
	}

	if _, err := url.ParseRequestURI(c.KAS.WalletURL); err != nil {
		return fmt.Errorf("invalid kas wallet url: %w", err)
	}

	if c.SmartContract != "" && !util.AddressValid(c.SmartContract) {
		return fmt.Errorf("invalid smart contract address: %s", c.SmartContract)
	}

	return nil
}

func checkRPCs(c *Config) error {
	rpcs := c.RPCs
	if len(rpcs) == 0 && c.KAS.NodeURL != "" {
		rpcs = []string{c.KAS.NodeURL}
	}

	if len(rpcs) < 1 {
		return errors.New("at least 1 rpc server url must be set")
	}

	for _, rpc := range rpcs {
		if !strings.HasPrefix(rpc, "http") {
			rpc = "http://" + rpc
		}

		u, err := url.Parse(rpc)
		if err != nil {
			return err
		}
		if u.Host == "" {
			return fmt.Errorf("invalid rpc server url: %s", rpc)
		}
	}

	return nil
}

func checkAccounts(c *Config) error {
	accounts := append([]Account{c.Owner}, c.TestAccounts...)

	for i, acc := range accounts {
		if i == 0 && acc.Address == "" {
			continue
		}

		if !util.AddressValid(acc.Address) {
			return fmt.Errorf("invalid account address: %q", acc.Address)
		}

		if acc.PrivateKey == "" {
			continue
		}

		key, err := crypto.HexToECDSA(strings.TrimPrefix(acc.PrivateKey, "0x"))
		if err != nil {
			return fmt.Errorf("invalid private key of %s: %w", acc.Address, err)
		}

		if !strings.EqualFold(crypto.PubkeyToAddress(key.PublicKey).Hex(), acc.Address) {
			return fmt.Errorf("private key does not match address %s", acc.Address)
		}
	}

	for _, r := range c.Watch.Recipients {
		if !util.AddressValid(r) {
			return fmt.Errorf("invalid watch recipient address: %q", r)
		}
	}

	return nil
}

func checkAliyunMail(m AliyunMailConfig) error {
	if m.AccountName == "" {
		return errors.New("aliyun mail account name cannot be empty")
	}

	if m.Region == "" {
		return errors.New("aliyun mail region cannot be empty")
	}

	if m.AccessKeyID == "" {
		return errors.New("aliyun mail accessKeyID cannot be empty")
	}

	if m.AccessKeySecret == "" {
		return errors.New("aliyun mail accessKeySecret cannot be empty")
	}

	if len(m.Receiver) == 0 {
		return errors.New("aliyun mail receiver cannot be empty")
	}

	return nil
}

func onConfigChange(e fsnotify.Event) {
	log.Printf("Config file change detected: %s", e.Name)

	if err := reload(true); err != nil {
		log.Printf("Failed to read new configuration, current configuration stay unchanged: %s", err)
	}
}
