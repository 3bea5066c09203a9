package config

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/vitalvoice/pkg/configs"
)

// Application config structure
type AppConfig struct {
	Name     string `mapstructure:"service_name" validate:"required"`
	Version  string `mapstructure:"version" validate:"required"`
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required"`
	LogLevel string `mapstructure:"log_level" validate:"required"`
	LogPath  string `mapstructure:"log_path"`

	SqliteConfig   configs.SqliteConfig   `mapstructure:"sqlite" validate:"required"`
	QuotaConfig    configs.QuotaConfig    `mapstructure:"quota" validate:"required"`
	AudioConfig    configs.AudioConfig    `mapstructure:"audio" validate:"required"`
	AnalyzerConfig configs.AnalyzerConfig `mapstructure:"analyzer" validate:"required"`
}

// reading config and intializing configs for application
func InitConfig() (*viper.Viper, error) {
	vConfig := viper.NewWithOptions(viper.KeyDelimiter("__"))

	vConfig.AddConfigPath(".")
	vConfig.SetConfigName(".env")
	path := os.Getenv("ENV_PATH")
	if path != "" {
		log.Printf("env path %v", path)
		vConfig.SetConfigFile(path)
	}
	vConfig.SetConfigType("env")
	vConfig.AutomaticEnv()

	setDefault(vConfig)
	if err := vConfig.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		log.Printf("Reading from env variables.")
	}

	return vConfig, nil
}

func setDefault(v *viper.Viper) {
	audio := configs.DefaultAudioConfig()

	v.SetDefault("SERVICE_NAME", "screening-api")
	v.SetDefault("VERSION", "0.0.1")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 9090)
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("LOG_PATH", "")

	v.SetDefault("SQLITE__PATH", "vitalvoice.db")

	v.SetDefault("QUOTA__DAILY_LIMIT", 5)
	v.SetDefault("QUOTA__WINDOW_HOURS", 24)

	v.SetDefault("AUDIO__RECORDING_BUDGET_SECONDS", audio.RecordingBudgetSeconds)
	v.SetDefault("AUDIO__MIN_DURATION_SECONDS", audio.MinDurationSeconds)
	v.SetDefault("AUDIO__MIN_RMS", audio.MinRMS)
	v.SetDefault("AUDIO__SILENCE_THRESHOLD", audio.SilenceThreshold)
	v.SetDefault("AUDIO__MIN_SPEECH_FRACTION", audio.MinSpeechFraction)
	v.SetDefault("AUDIO__MONITOR_GOOD_THRESHOLD", audio.MonitorGoodThreshold)
	v.SetDefault("AUDIO__MONITOR_LOW_THRESHOLD", audio.MonitorLowThreshold)
	v.SetDefault("AUDIO__MONITOR_SENSITIVITY", audio.MonitorSensitivity)

	v.SetDefault("ANALYZER__API_KEY", "")
	v.SetDefault("ANALYZER__MODEL", "gemini-2.5-flash")
	v.SetDefault("ANALYZER__MAX_CHAT_TURNS", 5)
}

// Getting application config from viper
func GetApplicationConfig(v *viper.Viper) (*AppConfig, error) {
	var config AppConfig
	err := v.Unmarshal(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}

	validate := validator.New()
	err = validate.Struct(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}
	return &config, nil
}
