package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/sw33tLie/metascope/internal/utils"
	"github.com/sw33tLie/metascope/pkg/platforms"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `                 _
  _ __ ___   ___| |_ __ _ ___  ___ ___  _ __   ___
 | '_ ` + "`" + ` _ \ / _ \ __/ _` + "`" + ` / __|/ __/ _ \| '_ \ / _ \
 | | | | | |  __/ || (_| \__ \ (_| (_) | |_) |  __/
 |_| |_| |_|\___|\__\__,_|___/\___\___/| .__/ \___|
                                       |_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "metascope",
	Short: "Facebook and Instagram page insights from your command line.",
	Long: LOGO + `metascope fetches follower counts, engagement metrics and recent posts for the
Facebook pages you manage and their linked Instagram business accounts, and
combines them into a single dashboard.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.metascope.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A .env next to the binary is optional.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Error loading .env file: %s\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".metascope")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	// Set default values for all keys
	viper.SetDefault("facebook.token", "")
	viper.SetDefault("graph.baseurl", platforms.DefaultGraphURL)
	viper.SetDefault("http.timeout", 30*time.Second)
	viper.SetDefault("server.listen", ":3000")
	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")
	viper.SetDefault("db.path", "")

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.metascope.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
