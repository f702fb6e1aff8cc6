package config

import (
	"os"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	TransportAMQP = "amqp"
	TransportSQS  = "sqs"
)

// DefaultMaxListSize caps how many elements a single list may hold.
const DefaultMaxListSize = 1 << 20

type Config struct {
	Transport             string    `yaml:"transport"`
	AmqpUrl               string    `yaml:"AMQP_SERVER_URL"`
	Queue                 string    `yaml:"queue"`
	ReplyQueue            string    `yaml:"replyQueue"`
	SQS                   SQSConfig `yaml:"sqs"`
	LogFilePath           string    `yaml:"logFile"`
	LogLevel              string    `yaml:"logLevel"`
	ClientsInputPath      string    `yaml:"clientsInputPath"`
	ClientIdleSeconds     int64     `yaml:"clientIdleSeconds"`
	ServerWaitTimeSeconds int64     `yaml:"serverWaitTimeSeconds"`
	MaxListSize           int       `yaml:"maxListSize"`
}

type SQSConfig struct {
	Region        string `yaml:"region"`
	Endpoint      string `yaml:"endpoint"`
	QueueUrl      string `yaml:"queueUrl"`
	ReplyQueueUrl string `yaml:"replyQueueUrl"`
}

func Default() *Config {
	return &Config{
		Transport:             TransportAMQP,
		Queue:                 "listq.commands",
		LogFilePath:           "./listq.log",
		LogLevel:              "info",
		ClientIdleSeconds:     10,
		ServerWaitTimeSeconds: 20,
		MaxListSize:           DefaultMaxListSize,
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes YAML config content on top of Default, substituting
// environment variables first.
func Parse(data []byte) (*Config, error) {
	confContent := []byte(os.ExpandEnv(string(data)))

	config := Default()
	if err := yaml.Unmarshal(confContent, config); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	switch c.Transport {
	case TransportAMQP:
		if c.AmqpUrl == "" {
			return errors.New("AMQP_SERVER_URL is required for the amqp transport")
		}
		if c.Queue == "" {
			return errors.New("queue must not be empty")
		}
	case TransportSQS:
		if c.SQS.QueueUrl == "" {
			return errors.New("sqs.queueUrl is required for the sqs transport")
		}
	default:
		return errors.Errorf("unknown transport %q", c.Transport)
	}
	if _, err := log15.LvlFromString(c.LogLevel); err != nil {
		return errors.Wrapf(err, "logLevel %q", c.LogLevel)
	}
	if c.ClientIdleSeconds <= 0 {
		return errors.New("clientIdleSeconds must be positive")
	}
	if c.MaxListSize <= 0 {
		return errors.New("maxListSize must be positive")
	}
	if c.ServerWaitTimeSeconds < 0 || c.ServerWaitTimeSeconds > 20 {
		return errors.New("serverWaitTimeSeconds must be between 0 and 20")
	}
	return nil
}

// Level returns the configured console log level.
func (c *Config) Level() log15.Lvl {
	lvl, err := log15.LvlFromString(c.LogLevel)
	if err != nil {
		return log15.LvlInfo
	}
	return lvl
}

// CommandQueue is the queue (or queue URL) commands are published to.
func (c *Config) CommandQueue() string {
	if c.Transport == TransportSQS {
		return c.SQS.QueueUrl
	}
	return c.Queue
}

// ReplyAddress is the queue (or queue URL) replies are published to, empty
// when none is configured.
func (c *Config) ReplyAddress() string {
	if c.Transport == TransportSQS {
		return c.SQS.ReplyQueueUrl
	}
	return c.ReplyQueue
}

// Replies returns a copy of c that consumes the reply queue instead of the
// command queue, or nil when no reply queue is configured.
func (c *Config) Replies() *Config {
	if c.ReplyAddress() == "" {
		return nil
	}
	replies := *c
	replies.Queue = c.ReplyQueue
	replies.ReplyQueue = ""
	replies.SQS.QueueUrl = c.SQS.ReplyQueueUrl
	replies.SQS.ReplyQueueUrl = ""
	return &replies
}
