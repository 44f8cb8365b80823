package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode         string `mapstructure:"mode"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Search    SearchConfig    `mapstructure:"search"`
}

// ProvidersConfig carries the endpoints and limits for every external
// place-data source. API keys are read from the environment, not from here.
type ProvidersConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	OverallTimeout time.Duration `mapstructure:"overallTimeout"`
	Nominatim      struct {
		BaseURL           string  `mapstructure:"baseURL"`
		UserAgent         string  `mapstructure:"userAgent"`
		RequestsPerSecond float64 `mapstructure:"requestsPerSecond"`
	} `mapstructure:"nominatim"`
	Photon struct {
		BaseURL string `mapstructure:"baseURL"`
	} `mapstructure:"photon"`
	Overpass struct {
		BaseURL           string  `mapstructure:"baseURL"`
		RequestsPerSecond float64 `mapstructure:"requestsPerSecond"`
	} `mapstructure:"overpass"`
	Yelp struct {
		BaseURL string `mapstructure:"baseURL"`
	} `mapstructure:"yelp"`
}

type SearchConfig struct {
	DefaultRadiusMeters float64           `mapstructure:"defaultRadiusMeters"`
	DefaultLimit        int               `mapstructure:"defaultLimit"`
	AssumedEventHours   int               `mapstructure:"assumedEventHours"`
	ServiceFeeFlat      float64           `mapstructure:"serviceFeeFlat"`
	TaxRatePercent      float64           `mapstructure:"taxRatePercent"`
	CityCentroids       map[string]LatLon `mapstructure:"cityCentroids"`
	DefaultCenter       LatLon            `mapstructure:"defaultCenter"`
}

type LatLon struct {
	Lat float64 `mapstructure:"lat"`
	Lon float64 `mapstructure:"lon"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
