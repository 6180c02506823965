// Command opentoken is a thin CLI exerciser around the opentoken
// library: it creates and parses tokens from the command line. It is an
// external collaborator of the core codec, not part of it, the same way
// the original Python package's setup.py console entry point sat outside
// the codec it wrapped. Structured the way this corpus's server binaries
// wire cobra, viper, and slog/devlog together (see
// kgiusti-go-fdo-server's cmd/root.go).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"hermannm.dev/devlog"

	opentoken "github.com/yoonjesung/go-opentoken"
)

var logLevel slog.LevelVar

func main() {
	slog.SetDefault(slog.New(devlog.NewHandler(os.Stdout, &devlog.Options{
		Level: &logLevel,
	})))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "opentoken",
	Short: "Create and parse OpenToken tokens from the command line",
	Long: `opentoken is a demo client for the OpenToken codec. It is not
part of the codec itself; it exists to exercise Create/Parse end to end
and to show how a consuming application wires up its configuration.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("debug") {
			logLevel.Set(slog.LevelDebug)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Print debug logging")
	rootCmd.PersistentFlags().String("password", "", "Shared password (or set OPENTOKEN_PASSWORD)")
	rootCmd.PersistentFlags().Int("suite", int(opentoken.SuiteAES128CBC), "Cipher suite id (1=AES-256-CBC, 2=AES-128-CBC, 3=3DES-CBC)")
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("password", rootCmd.PersistentFlags().Lookup("password"))
	_ = viper.BindPFlag("suite", rootCmd.PersistentFlags().Lookup("suite"))
	viper.SetEnvPrefix("opentoken")
	viper.AutomaticEnv()

	rootCmd.AddCommand(createCmd, parseCmd)
}

func codecFromFlags() (*opentoken.Codec, error) {
	suite := opentoken.Suite(viper.GetInt("suite"))
	return opentoken.New([]byte(viper.GetString("password")), opentoken.WithSuite(suite))
}

var createCmd = &cobra.Command{
	Use:   "create key=value [key=value...]",
	Short: "Create an OpenToken from key=value claim pairs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		codec, err := codecFromFlags()
		if err != nil {
			return err
		}

		var pairs opentoken.Pairs
		for _, kv := range args {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("invalid claim %q, expected key=value", kv)
			}
			pairs = pairs.Set(k, v)
		}

		token, err := codec.Create(pairs)
		if err != nil {
			return err
		}
		slog.Debug("created token", "suite", viper.GetInt("suite"), "claims", len(pairs))
		fmt.Println(token)
		return nil
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse token",
	Short: "Parse and validate an OpenToken, printing its claims",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		codec, err := codecFromFlags()
		if err != nil {
			return err
		}

		result, err := codec.Parse(args[0])
		if err != nil {
			return err
		}
		for _, pair := range result {
			fmt.Println(pair.Key + "=" + pair.Value)
		}
		slog.Debug("parsed token", "claims", strconv.Itoa(len(result)))
		return nil
	},
}
