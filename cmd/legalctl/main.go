// Copyright 2025 Legal Assistant Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main provides legalctl, the operator CLI for the legal assistant.
// It can run the HTTP service or analyze a document offline with the
// heuristic pipeline.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/your-org/legal-assistant/internal/config"
	"github.com/your-org/legal-assistant/internal/docservice"
	"github.com/your-org/legal-assistant/internal/server"
	"go.uber.org/zap"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "legalctl",
		Short: "Legal assistant service and analysis tools",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAnalyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the legal assistant HTTP service",
		RunE: func(_ *cobra.Command, _ []string) error {
			logger, _ := zap.NewProduction()
			defer func() { _ = logger.Sync() }()

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			srv, cleanup, err := server.Build(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to build server: %w", err)
			}
			defer cleanup()

			return srv.Run(cfg.Server.Port)
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	var documentName string

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a document offline and print the result as JSON",
		Long: "Analyze runs the heuristic analysis pipeline over a local file " +
			"without the completion service, cache or database.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read document: %w", err)
			}

			name := documentName
			if name == "" {
				name = args[0]
			}

			service := docservice.NewService(docservice.DefaultConfig(), nil, nil, nil, zap.NewNop())
			analysis := service.Analyze(context.Background(), string(content), "", name)

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(analysis)
		},
	}

	cmd.Flags().StringVarP(&documentName, "name", "n", "", "Document name used in the analysis output")
	return cmd
}
