// Command oidcauthd runs the OpenID Connect authentication service as a
// standalone HTTP server. Provider settings come from a YAML config file
// with OIDC_-prefixed environment overrides; see config.FileStore.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbukum/oidcauth/config"
	"github.com/kbukum/oidcauth/httpclient"
	"github.com/kbukum/oidcauth/logger"
	"github.com/kbukum/oidcauth/plugin"
	"github.com/kbukum/oidcauth/server"
	"github.com/kbukum/oidcauth/tokens"
	"github.com/kbukum/oidcauth/user"
	"github.com/kbukum/oidcauth/version"
)

func main() {
	configPath := flag.String("config", "oidcauth.yaml", "path to the provider configuration file")
	addr := flag.String("addr", "", "listen address host (overrides SERVER_HOST)")
	port := flag.Int("port", 0, "listen port (overrides SERVER_PORT)")
	flag.Parse()

	log := logger.NewFromEnv("oidcauth")
	logger.SetGlobalLogger(log)
	log.Info("starting oidcauthd", logger.Fields("version", version.Get().Version))

	if err := run(*configPath, *addr, *port, log); err != nil {
		log.WithError(err).Error("fatal error")
		os.Exit(1)
	}
}

func run(configPath, host string, port int, log *logger.Logger) error {
	tokenService, err := tokens.NewService(tokens.Config{
		Secret: os.Getenv("OIDC_TOKEN_SECRET"),
		Issuer: os.Getenv("OIDC_SITE_URL"),
	})
	if err != nil {
		return err
	}

	httpClient, err := httpclient.New(httpclient.Config{})
	if err != nil {
		return err
	}

	settings := config.Settings{
		SiteURL:  os.Getenv("OIDC_SITE_URL"),
		PluginID: os.Getenv("OIDC_PLUGIN_ID"),
	}
	p, err := plugin.New(config.NewFileStore(configPath), settings, tokenService, user.NewMemoryRepository(), httpClient)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{Host: host, Port: port}, log)
	if err != nil {
		return err
	}
	server.RegisterRoutes(srv.Engine(), p)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return srv.Stop(context.Background())
}
