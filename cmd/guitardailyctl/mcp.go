package main

import (
	"context"
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/guitardaily/internal/logging"
	"github.com/meltforce/guitardaily/internal/mcp"
	"github.com/urfave/cli/v3"
)

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the MCP tools over stdio, backed by a remote GuitarDaily server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "remote",
				Usage:    "Server URL (e.g. https://guitardaily.tail1234.ts.net)",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "default-minutes",
				Usage: "Session length plan_session uses when none is given",
				Value: 30,
			},
			&cli.IntFlag{
				Name:  "max-minutes",
				Usage: "Longest session plan_session accepts (0 for no limit)",
				Value: 240,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (logs go to stderr)",
				Value: "warn",
			},
		},
		Action: runMCP,
	}
}

func runMCP(_ context.Context, cmd *cli.Command) error {
	// stdout carries the protocol, so logs go to stderr
	log, err := logging.New(os.Stderr, cmd.String("log-level"), "")
	if err != nil {
		return err
	}
	client := mcp.NewHTTPClient(cmd.String("remote"))
	log.Info("mcp stdio bridge starting", "remote", cmd.String("remote"), "version", Version)
	opts := mcp.Options{
		DefaultMinutes: int(cmd.Int("default-minutes")),
		MaxMinutes:     int(cmd.Int("max-minutes")),
	}
	if err := mcpserver.ServeStdio(mcp.New(client, Version, opts, log)); err != nil {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}
