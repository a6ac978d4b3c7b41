/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomoncle/pgclient/config"
	"github.com/tomoncle/pgclient/database"
	"github.com/tomoncle/pgclient/utils"
)

var (
	version = "dev"
	commit  = "none"
)

// CLI flags
var (
	envFiles    []string
	logLevel    string
	redact      bool
	format      string
	schemaPath  string
	pingTimeout time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pgclient",
		Short:         "Resolve database settings and check connectivity",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			utils.ConfigureLogLevel(logLevel)
		},
	}
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files merged under the process environment (default .env if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	urlCmd := &cobra.Command{
		Use:   "url",
		Short: "Print the resolved DATABASE_URL and where it came from",
		Args:  cobra.NoArgs,
		RunE:  runURL,
	}
	urlCmd.Flags().BoolVar(&redact, "redact", false, "mask the password")

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the schema toolchain configuration",
		Args:  cobra.NoArgs,
		RunE:  runSchema,
	}
	schemaCmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")
	schemaCmd.Flags().StringVar(&schemaPath, "schema", "", "schema file path (default "+config.DefaultSchemaPath+", or SCHEMA_PATH)")
	schemaCmd.Flags().BoolVar(&redact, "redact", false, "mask the datasource password")

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Open a client for the resolved URL and print its health",
		Args:  cobra.NoArgs,
		RunE:  runPing,
	}
	pingCmd.Flags().DurationVar(&pingTimeout, "timeout", 10*time.Second, "overall timeout")

	rootCmd.AddCommand(urlCmd, schemaCmd, pingCmd, &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pgclient %s (commit: %s)\n", version, commit)
		},
	})
	return rootCmd
}

func loadEnv() (config.Env, error) {
	return config.LoadEnv(envFiles...)
}

func runURL(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	res := config.ResolveDatabaseURL(env)
	url := res.URL
	if redact {
		url = config.RedactURL(url)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t(%s)\n", url, res.Source)
	return nil
}

func runSchema(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	if schemaPath != "" {
		env = env.With(config.EnvSchemaPath, schemaPath)
	}
	cfg := config.NewSchemaConfig(env)
	if redact {
		cfg = cfg.Redacted()
	}

	var out []byte
	switch format {
	case "yaml", "yml":
		out, err = cfg.YAML()
	case "json":
		out, err = cfg.JSON()
		out = append(out, '\n')
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode schema config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runPing(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), pingTimeout)
	defer cancel()

	provider := database.NewProviderFromEnv(env, nil)
	defer func() { _ = provider.Close() }()

	client, err := provider.Client(ctx)
	if err != nil {
		return fmt.Errorf("connect %s: %w", provider.URL(), err)
	}
	status := client.HealthCheck(ctx)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(status); err != nil {
		return err
	}
	if !status.Healthy {
		return fmt.Errorf("database unhealthy: %s", status.LastError)
	}
	return nil
}
