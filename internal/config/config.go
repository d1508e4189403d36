package config

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/citizenwallet/tokengov/pkg/gov"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

var ErrInvalidTallyMode = errors.New("invalid tally mode")

type Config struct {
	RPCURL       string `env:"RPC_URL,default=http://localhost:8545"`
	RPCWSURL     string `env:"RPC_WS_URL,default=ws://localhost:8545"`
	APIKEY       string `env:"API_KEY"`
	SentryURL    string `env:"SENTRY_URL"`
	DiscordURL   string `env:"DISCORD_URL"`
	ExecutorKey  string `env:"EXECUTOR_KEY"`
	GovTallyMode string `env:"GOV_TALLY_MODE,default=cumulative"`
}

func New(ctx context.Context, envpath string) (*Config, error) {
	if envpath != "" {
		log.Default().Println("loading env from file: ", envpath)
		err := godotenv.Load(envpath)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	err := envconfig.Process(ctx, cfg)
	if err != nil {
		return nil, err
	}

	switch gov.TallyMode(cfg.GovTallyMode) {
	case gov.TallyModeCumulative, gov.TallyModeScoped:
	default:
		return nil, fmt.Errorf("%w: %q, expected %s or %s", ErrInvalidTallyMode, cfg.GovTallyMode, gov.TallyModeCumulative, gov.TallyModeScoped)
	}

	return cfg, nil
}
