package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/citizenwallet/tokengov/internal/config"
	"github.com/citizenwallet/tokengov/internal/services/db"
	"github.com/citizenwallet/tokengov/internal/services/ethrequest"
	"github.com/citizenwallet/tokengov/internal/services/webhook"
	"github.com/citizenwallet/tokengov/internal/version"
	"github.com/citizenwallet/tokengov/pkg/gov"
	"github.com/citizenwallet/tokengov/pkg/queue"
	"github.com/citizenwallet/tokengov/pkg/router"
	"github.com/getsentry/sentry-go"
)

// @title           Token Governance API
// @version         1.0
// @description     Proposals, delegations and votes weighted by ERC1155 balances.

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.basic  Authorization Bearer
func main() {
	log.Default().Println("launching governance node", version.Version, "...")

	env := flag.String("env", ".env", "path to .env file")

	port := flag.Int("port", 3000, "port to listen on")

	ws := flag.Bool("ws", false, "enable websocket")

	dbtype := flag.String("db", "sqlite", "storage backend: sqlite, postgres or memory (default: sqlite)")

	dbpath := flag.String("dbpath", ".", "path to db")

	notify := flag.Bool("notify", true, "enable notifications")

	notifybf := flag.Int("buffer", 100, "notification queue buffer size (default: 100)")

	flag.Parse()

	ctx := context.Background()

	conf, err := config.New(ctx, *env)
	if err != nil {
		log.Fatal(err)
	}

	if conf.SentryURL != "" && conf.SentryURL != "x" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:              conf.SentryURL,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			log.Fatalf("sentry.Init: %s", err)
		}
		// Flush buffered events before the program terminates.
		defer sentry.Flush(2 * time.Second)
	}

	log.Default().Println("connecting to rpc...")

	rpcUrl := conf.RPCURL
	if *ws {
		log.Default().Println("running in websocket mode...")
		rpcUrl = conf.RPCWSURL
	} else {
		log.Default().Println("running in standard http mode...")
	}

	evm, err := ethrequest.NewEthService(ctx, rpcUrl)
	if err != nil {
		log.Fatal(err)
	}
	defer evm.Close()

	log.Default().Println("fetching chain id...")

	chid, err := evm.ChainID()
	if err != nil {
		log.Fatal(err)
	}

	log.Default().Println("node running for chain: ", chid.String())

	log.Default().Println("starting storage: ", *dbtype)

	var store gov.Store
	switch *dbtype {
	case "sqlite":
		d, err := db.NewDB(chid, *dbpath)
		if err != nil {
			log.Fatal(err)
		}
		defer d.Close()

		store = d
	case "postgres":
		dbconf, err := config.NewDBConfig(ctx, *env)
		if err != nil {
			log.Fatal(err)
		}

		d, err := db.NewPostgresDB(chid, dbconf.DBUser, dbconf.DBPassword, dbconf.DBName, dbconf.DBHost)
		if err != nil {
			log.Fatal(err)
		}
		defer d.Close()

		store = d
	case "memory":
		store = gov.NewMemoryStore()
	default:
		log.Fatal("unsupported db type (must be one of: sqlite, postgres, memory)")
	}

	quitAck := make(chan error)

	w := webhook.NewMessager(conf.DiscordURL, chid.String(), *notify)

	notifyq := queue.NewService("notify", 3, *notifybf, ctx, w)

	go func() {
		quitAck <- notifyq.Start(queue.NewWebhookProcessor(ctx, w))
	}()

	exec, err := ethrequest.NewExecutor(evm, conf.ExecutorKey)
	if err != nil {
		log.Fatal(err)
	}

	if conf.ExecutorKey == "" {
		log.Default().Println("no executor key, proposal targets will only be simulated")
	} else {
		log.Default().Println("executing proposals from: ", exec.Address().Hex())
	}

	g := gov.New(store, ethrequest.NewTokenOracle(evm), exec,
		gov.WithTallyMode(gov.TallyMode(conf.GovTallyMode)),
		gov.WithNotifier(queue.NewNotifier(notifyq)),
	)

	log.Default().Println("tally mode: ", g.Mode())

	log.Default().Println("starting api service...")

	api := router.NewServer(chid, conf.APIKEY, evm, g)

	go func() {
		quitAck <- api.Start(*port)
	}()

	log.Default().Println("listening on port: ", *port)

	for err := range quitAck {
		if err != nil {
			w.NotifyError(ctx, err)
			sentry.CaptureException(err)
			log.Fatal(err)
		}
	}
}
