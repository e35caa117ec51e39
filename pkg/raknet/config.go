package raknet

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds the per-peer tunables the distilled protocol fixes as
// constants. Loading them through envconfig lets an operator running the
// demo binary retune retransmission behavior without a recompile; it does
// not change what the protocol does, only how aggressively it does it.
type Config struct {
	RTO                       time.Duration `env:"RAKNET_RTO,default=1s"`
	TAck                      time.Duration `env:"RAKNET_T_ACK,default=10ms"`
	NackPerGapCap             int           `env:"RAKNET_NACK_PER_GAP_CAP,default=1000"`
	IncomingConnectionTimeout time.Duration `env:"RAKNET_INCOMING_CONNECTION_TIMEOUT,default=10s"`
	ConnectedTimeout          time.Duration `env:"RAKNET_CONNECTED_TIMEOUT,default=30s"`
	MaximumMTU                int           `env:"RAKNET_MAXIMUM_MTU,default=1492"`
	MaxPingResponseBytes      int           `env:"RAKNET_MAX_PING_RESPONSE_BYTES,default=399"`
	ProcessInterval           time.Duration `env:"RAKNET_PROCESS_INTERVAL,default=1ms"`
}

// DefaultConfig returns the spec's literal defaults without touching the
// environment, for callers that don't want envconfig's lookup.
func DefaultConfig() Config {
	return Config{
		RTO:                       DefaultRTO,
		TAck:                      DefaultTAck,
		NackPerGapCap:             maxNackPerGap,
		IncomingConnectionTimeout: DefaultIncomingConnectionTimeout,
		ConnectedTimeout:          DefaultConnectedTimeout,
		MaximumMTU:                MaximumMTU,
		MaxPingResponseBytes:      defaultMaxPingResponseBytes,
		ProcessInterval:           DefaultProcessInterval,
	}
}

// LoadConfig reads Config from the environment, falling back to
// DefaultConfig's values for anything unset.
func LoadConfig(ctx context.Context) (Config, error) {
	cfg := DefaultConfig()
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
