package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.3.0"

var (
	// Global flags
	dataDir   string
	dbBackend string
	p2pPort   int
	apiPort   int
	apiURL    string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "keta",
	Short: "keta-chain - proof-of-work ledger with peer gossip",
	Long: `keta-chain is a single-node proof-of-work ledger simulation with peer
gossip, wallet management and a background mining subsystem. Blocks and
transactions propagate between nodes over websocket peers; conflicting
chains resolve by the longest-chain rule.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("keta-chain v%s\n", version)
	},
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "Data directory")
	RootCmd.PersistentFlags().StringVar(&dbBackend, "db", "leveldb", "Database backend (leveldb, memory)")
	RootCmd.PersistentFlags().IntVar(&p2pPort, "p2p-port", 6001, "Gossip listen port")
	RootCmd.PersistentFlags().IntVar(&apiPort, "api-port", 3001, "REST API listen port")
	RootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://127.0.0.1:3001", "REST API base URL for client commands")

	viper.BindPFlag("data-dir", RootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("db", RootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("p2p-port", RootCmd.PersistentFlags().Lookup("p2p-port"))
	viper.BindPFlag("api-port", RootCmd.PersistentFlags().Lookup("api-port"))
	viper.BindPFlag("api-url", RootCmd.PersistentFlags().Lookup("api-url"))

	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(startCmd)
	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(walletCmd)
	RootCmd.AddCommand(mineCmd)
	RootCmd.AddCommand(statusCmd)
}

// defaultDataDir returns the default data directory
func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.keta"
	}
	return filepath.Join(homeDir, ".keta")
}

// initConfig reads in the config file and environment variables if set
func initConfig() {
	viper.SetDefault("db", "leveldb")
	viper.SetDefault("p2p-port", 6001)
	viper.SetDefault("api-port", 3001)
	viper.SetDefault("difficulty", 2)
	viper.SetDefault("mining-reward", 10.0)
	viper.SetDefault("max-block-txs", 10)
	viper.SetDefault("mine-interval", "5s")
	viper.SetDefault("peers", []string{})

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(viper.GetString("data-dir"))
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("KETA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// apiClient returns a REST client for commands that talk to a running node
func apiClient() *resty.Client {
	return resty.New().
		SetBaseURL(viper.GetString("api-url")).
		SetHeader("Accept", "application/json")
}

func walletPath() string {
	return filepath.Join(viper.GetString("data-dir"), "wallet.json")
}
