package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tokengate/tokengated/internal/core/application"
	"github.com/tokengate/tokengated/internal/core/ports"
	"github.com/tokengate/tokengated/internal/infrastructure/db"
	inprocess "github.com/tokengate/tokengated/internal/infrastructure/extension/inprocess"
	timescheduler "github.com/tokengate/tokengated/internal/infrastructure/scheduler/gocron"
	log "github.com/sirupsen/logrus"
)

type supportedType map[string]struct{}

var (
	supportedDbs = supportedType{
		"badger": {},
	}
	supportedLogics = supportedType{
		application.LogicVersionStandard: {},
		application.LogicVersionStrict:   {},
	}
	supportedExtensions = supportedType{
		"blocklist": {},
		"pauser":    {},
		"amountcap": {},
	}
)

type Config struct {
	Datadir       string
	Port          uint32
	LogLevel      int
	DbType        string
	DbDir         string
	ManagerToken  string
	LogicVersion  string
	AuditInterval int64

	Extensions     []string
	BlockedAddrs   []string
	AmountCapMax   uint64
	SeedAccounts   []string

	repo     ports.RepoManager
	resolver ports.ExtensionResolver
	proxy    *application.Proxy
	auditor  *application.RegistryAuditor
}

const (
	defaultDatadir       = ".tokengated"
	defaultPort          = 7070
	defaultLogLevel      = int(log.InfoLevel)
	defaultDbType        = "badger"
	defaultLogicVersion  = application.LogicVersionStandard
	defaultAuditInterval = 300
	defaultAmountCapMax  = 1_000_000
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("TOKENGATED")
	viper.AutomaticEnv()

	viper.SetDefault("DATADIR", defaultDatadir)
	viper.SetDefault("PORT", defaultPort)
	viper.SetDefault("LOG_LEVEL", defaultLogLevel)
	viper.SetDefault("DB_TYPE", defaultDbType)
	viper.SetDefault("LOGIC_VERSION", defaultLogicVersion)
	viper.SetDefault("AUDIT_INTERVAL", defaultAuditInterval)
	viper.SetDefault("EXTENSIONS", "blocklist,pauser,amountcap")
	viper.SetDefault("AMOUNT_CAP_MAX", defaultAmountCapMax)

	datadir := viper.GetString("DATADIR")
	if err := makeDirectoryIfNotExists(datadir); err != nil {
		return nil, fmt.Errorf("failed to create datadir: %s", err)
	}

	managerToken := viper.GetString("MANAGER_TOKEN")
	if managerToken == "" {
		return nil, fmt.Errorf("missing manager token")
	}

	cfg := &Config{
		Datadir:       datadir,
		Port:          viper.GetUint32("PORT"),
		LogLevel:      viper.GetInt("LOG_LEVEL"),
		DbType:        viper.GetString("DB_TYPE"),
		DbDir:         filepath.Join(datadir, "db"),
		ManagerToken:  managerToken,
		LogicVersion:  viper.GetString("LOGIC_VERSION"),
		AuditInterval: viper.GetInt64("AUDIT_INTERVAL"),
		Extensions:    splitList(viper.GetString("EXTENSIONS")),
		BlockedAddrs:  splitList(viper.GetString("BLOCKED_ADDRESSES")),
		AmountCapMax:  viper.GetUint64("AMOUNT_CAP_MAX"),
		SeedAccounts:  splitList(viper.GetString("SEED_ACCOUNTS")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, ok := supportedDbs[c.DbType]; !ok {
		return fmt.Errorf("unsupported db type %s, must be one of %s", c.DbType, supportedDbs)
	}
	if _, ok := supportedLogics[c.LogicVersion]; !ok {
		return fmt.Errorf(
			"unsupported logic version %s, must be one of %s", c.LogicVersion, supportedLogics,
		)
	}
	for _, extension := range c.Extensions {
		if _, ok := supportedExtensions[extension]; !ok {
			return fmt.Errorf(
				"unsupported extension %s, must be one of %s", extension, supportedExtensions,
			)
		}
	}
	if c.AuditInterval <= 0 {
		return fmt.Errorf("audit interval must be positive")
	}
	for _, seed := range c.SeedAccounts {
		if _, err := parseSeedAccount(seed); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) RepoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		if err := c.repoManager(); err != nil {
			return nil, err
		}
	}
	return c.repo, nil
}

func (c *Config) ExtensionResolver() ports.ExtensionResolver {
	if c.resolver == nil {
		c.extensionResolver()
	}
	return c.resolver
}

func (c *Config) Proxy() (*application.Proxy, error) {
	if c.proxy == nil {
		if err := c.proxyService(); err != nil {
			return nil, err
		}
	}
	return c.proxy, nil
}

func (c *Config) Auditor() (*application.RegistryAuditor, error) {
	if c.auditor == nil {
		proxy, err := c.Proxy()
		if err != nil {
			return nil, err
		}
		c.auditor = application.NewRegistryAuditor(
			proxy.Store(),
			timescheduler.NewScheduler(),
			time.Duration(c.AuditInterval)*time.Second,
		)
	}
	return c.auditor, nil
}

func (c *Config) repoManager() error {
	var dataStoreConfig []interface{}
	logger := log.New()

	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	default:
		return fmt.Errorf("unknown db type")
	}

	svc, err := db.NewService(db.ServiceConfig{
		DbType:   c.DbType,
		DbConfig: dataStoreConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) extensionResolver() {
	hosted := make([]ports.Extension, 0, len(c.Extensions))
	for _, extension := range c.Extensions {
		switch extension {
		case "blocklist":
			hosted = append(hosted, inprocess.NewBlocklist("blocklist", c.BlockedAddrs))
		case "pauser":
			hosted = append(hosted, inprocess.NewPauser("pauser"))
		case "amountcap":
			hosted = append(hosted, inprocess.NewAmountCap("amountcap", c.AmountCapMax))
		}
	}
	c.resolver = inprocess.NewExtensionResolver(hosted...)
}

func (c *Config) proxyService() error {
	repo, err := c.RepoManager()
	if err != nil {
		return err
	}

	logic, logicErr := application.NewLogic(c.LogicVersion, c.ExtensionResolver())
	if logicErr != nil {
		return logicErr
	}

	store := application.NewStore(repo, logic.Id())
	c.proxy = application.NewProxy(c.ManagerToken, logic, store)

	return c.seedAccounts()
}

// seedAccounts credits the configured initial balances once, on first boot
// against an empty ledger.
func (c *Config) seedAccounts() error {
	if len(c.SeedAccounts) == 0 {
		return nil
	}

	ctx := context.Background()
	accounts, err := c.proxy.Store().Accounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) > 0 {
		return nil
	}

	for _, seed := range c.SeedAccounts {
		account, err := parseSeedAccount(seed)
		if err != nil {
			return err
		}
		if err := c.proxy.Issue(
			ctx, c.ManagerToken, account.address, account.partition, account.amount,
		); err != nil {
			return err
		}
		log.WithField("address", account.address).
			WithField("partition", account.partition).
			WithField("amount", account.amount).
			Info("seeded account")
	}
	return nil
}

type seedAccount struct {
	address   string
	partition string
	amount    uint64
}

// parseSeedAccount parses "address:partition:amount", with an empty partition
// for the plain fungible balance.
func parseSeedAccount(s string) (*seedAccount, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid seed account %q, want address:partition:amount", s)
	}
	amount, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid seed account amount %q: %s", parts[2], err)
	}
	if len(parts[0]) == 0 {
		return nil, fmt.Errorf("invalid seed account %q, empty address", s)
	}
	return &seedAccount{address: parts[0], partition: parts[1], amount: amount}, nil
}

func splitList(s string) []string {
	if len(strings.TrimSpace(s)) == 0 {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); len(trimmed) > 0 {
			out = append(out, trimmed)
		}
	}
	return out
}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for typeStr := range t {
		types = append(types, typeStr)
	}
	return strings.Join(types, " | ")
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
