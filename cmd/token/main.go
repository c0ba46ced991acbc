// Command token prints a stream token signed with JWT_SECRET.
//
//	JWT_SECRET=... go run ./cmd/token -sub alice -ttl 2h
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/inamate/rim/internal/auth"
	"github.com/inamate/rim/internal/config"
)

func main() {
	sub := flag.String("sub", "viewer", "token subject")
	ttl := flag.Duration("ttl", auth.DefaultTTL, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	svc, err := auth.NewService(cfg.JWTSecret)
	if err != nil {
		slog.Error("create auth service", "error", err)
		os.Exit(1)
	}
	token, err := svc.IssueToken(*sub, *ttl)
	if err != nil {
		slog.Error("issue token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
