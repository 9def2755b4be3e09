package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spigell/hh-screener/internal/interview"
	"github.com/spigell/hh-screener/internal/questions"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "hh-screener"
)

type Config struct {
	AI        *AIConfig        `mapstructure:"ai"`
	Interview *InterviewConfig `mapstructure:"interview"`
	Export    *ExportConfig    `mapstructure:"export"`
	Server    *ServerConfig    `mapstructure:"server"`
}

type AIConfig struct {
	Provider  string        `mapstructure:"provider"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate-limit"`
	Gemini    *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string  `mapstructure:"api-key"`
	APIKeyFile   string  `mapstructure:"api-key-file"`
	Model        string  `mapstructure:"model"`
	MaxRetries   int     `mapstructure:"max-retries"`
	MaxLogLength int     `mapstructure:"max-log-length"`
	Temperature  float32 `mapstructure:"temperature"`
}

type InterviewConfig struct {
	Company       string       `mapstructure:"company"`
	QuestionCount int          `mapstructure:"question-count"`
	PhoneDigits   *DigitsRange `mapstructure:"phone-digits"`
	MaxExperience float64      `mapstructure:"max-experience"`
	ExitPhrases   []string     `mapstructure:"exit-phrases"`
	HistoryTokens int          `mapstructure:"history-tokens"`
	HistoryLines  int          `mapstructure:"history-lines"`
	MaxInput      int          `mapstructure:"max-input"`
}

type DigitsRange struct {
	Min int `mapstructure:"min"`
	Max int `mapstructure:"max"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hh-screener conducts candidate screening interviews in a chat",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "HH_SCREENER_GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding HH_SCREENER_GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}

	setDefaults()
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hh-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.timeout", 20*time.Second)
	viper.SetDefault("ai.rate-limit", 2)
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("ai.gemini.temperature", 0.2)

	viper.SetDefault("interview.company", interview.DefaultCompany)
	viper.SetDefault("interview.question-count", questions.DefaultCount)
	viper.SetDefault("interview.phone-digits.min", 7)
	viper.SetDefault("interview.phone-digits.max", 15)
	viper.SetDefault("interview.max-experience", 60)
	viper.SetDefault("interview.exit-phrases", interview.DefaultExitPhrases)
	viper.SetDefault("interview.history-tokens", 512)
	viper.SetDefault("interview.history-lines", interview.DefaultHistoryLines)
	viper.SetDefault("interview.max-input", interview.DefaultMaxInputLength)

	viper.SetDefault("export.dir", "")
	viper.SetDefault("server.listen", ":8080")
}

// initConfig reads the config file. Without an explicit --config a missing
// hh-screener.yaml is fine, every key has a default.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		// We can't proceed if the config file parsed with error.
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Interview == nil {
		config.Interview = &InterviewConfig{}
	}
	if config.Interview.PhoneDigits == nil {
		config.Interview.PhoneDigits = &DigitsRange{}
	}
	if config.Export == nil {
		config.Export = &ExportConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}

	return config, nil
}
