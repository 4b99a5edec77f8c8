package bootstrap

import (
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config holds everything the service binaries need at startup. Values come
// from an optional yaml file (CONFIG_FILE) with environment overrides for the
// endpoints that differ between compose, CI and production.
type Config struct {
	Infra struct {
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Kafka struct {
			Brokers []string `yaml:"brokers"`
		} `yaml:"kafka"`
		MySQL struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addr string `yaml:"addr"`
		} `yaml:"redis"`
		Zookeeper struct {
			Servers []string `yaml:"servers"`
		} `yaml:"zookeeper"`
		Nacos struct {
			ServerAddrs string `yaml:"serverAddrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
	} `yaml:"infra"`
	Payment struct {
		SimulationDelayMs int64   `yaml:"simulationDelayMs"`
		SuccessRate       float64 `yaml:"successRate"`
		Workers           int     `yaml:"workers"`
		RetryMaxAttempts  int     `yaml:"retryMaxAttempts"`
	} `yaml:"payment"`
}

var (
	currentConfig Config
	loadOnce      sync.Once
)

// Init loads configuration. Safe to call from every binary's main; only the
// first call does work.
func Init() {
	loadOnce.Do(func() {
		currentConfig = defaults()
		if path := os.Getenv("CONFIG_FILE"); path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				panic("bootstrap: cannot read " + path + ": " + err.Error())
			}
			if err := yaml.Unmarshal(data, &currentConfig); err != nil {
				panic("bootstrap: cannot parse " + path + ": " + err.Error())
			}
		}
		applyEnvOverrides(&currentConfig)
	})
}

// GetCurrentConfig returns the loaded configuration.
func GetCurrentConfig() Config {
	Init()
	return currentConfig
}

func defaults() Config {
	var c Config
	c.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	c.Infra.Kafka.Brokers = []string{"localhost:9092"}
	c.Infra.MySQL.DSN = "root:root@tcp(localhost:3306)/ecommerce?charset=utf8mb4&parseTime=True&loc=Local"
	c.Infra.Redis.Addr = "localhost:6379"
	c.Infra.Zookeeper.Servers = []string{"localhost:2181"}
	c.Infra.Nacos.ServerAddrs = "localhost:8848"
	c.Infra.Nacos.Group = "DEFAULT_GROUP"
	c.Payment.SimulationDelayMs = 2000
	c.Payment.SuccessRate = 0.95
	c.Payment.Workers = 4
	c.Payment.RetryMaxAttempts = 3
	return c
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv("JAEGER_ENDPOINT"); v != "" {
		c.Infra.Jaeger.Endpoint = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Infra.Kafka.Brokers = splitCSV(v)
	}
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		c.Infra.MySQL.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Infra.Redis.Addr = v
	}
	if v := os.Getenv("ZOOKEEPER_SERVERS"); v != "" {
		c.Infra.Zookeeper.Servers = splitCSV(v)
	}
	if v := os.Getenv("NACOS_SERVER_ADDRS"); v != "" {
		c.Infra.Nacos.ServerAddrs = v
	}
	if v := os.Getenv("NACOS_NAMESPACE"); v != "" {
		c.Infra.Nacos.Namespace = v
	}
	if v := os.Getenv("NACOS_GROUP"); v != "" {
		c.Infra.Nacos.Group = v
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
