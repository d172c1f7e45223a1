package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/career-pilot/internal/mcpserver"
	"github.com/spf13/cobra"
)

var mcpAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long:  `Start a Model Context Protocol server over streamable HTTP (path ` + mcpserver.StreamPath + `) exposing the workflow as tools.`,
	RunE:  runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", ":8090", "Address to listen on")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return mcpserver.New(a.controller, a.logger, version).Run(ctx, mcpAddr)
}
