package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the road analysis batch.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - MapsAPIKey: The API key for the Street View Static and Geocoding APIs.
// - AnthropicAPIKey: The API key for the Anthropic Messages API.
// - LocationsFile: Path to the JSON file with [latitude, longitude] pairs.
// - OutputDir: Directory where analysis reports are written.
// - SnapshotDir: Optional directory for debug copies of fetched images.
// - SelectMode, SelectCount: Coordinate selection policy.
// - Model, MaxTokens: Inference model identifier and output token limit.
// - Pricing: USD per million tokens and the JPY exchange rate.
// - RateLimit: Street View requests per second.
// - ReverseGeocode: Whether results are enriched with resolved addresses.
// - Port: Monitoring server port; 0 disables the server.
// - Database: Optional Postgres sink, enabled when Host is set.
type Config struct {
	Env              string
	MapsAPIKey       string
	AnthropicAPIKey  string
	LocationsFile    string
	OutputDir        string
	SnapshotDir      string
	SelectMode       string
	SelectCount      int
	Model            string
	MaxTokens        int
	InputUSDPerMTok  float64
	OutputUSDPerMTok float64
	JPYPerUSD        float64
	RateLimit        int
	ReverseGeocode   bool
	Port             int
	Database         PostgresConfig
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// Enabled reports whether the optional Postgres sink is configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

// MustLoad loads the configuration from the environment and returns a Config
// struct. Malformed numeric values panic; missing API keys are checked later,
// at client construction.
func MustLoad() *Config {
	_ = godotenv.Load()

	selectCount, err := strconv.Atoi(setDefaultEnv("ROADSCAN_SELECT_COUNT", "10"))
	if err != nil {
		panic("failed to parse selection count from configuration, must be an integer")
	}

	maxTokens, err := strconv.Atoi(setDefaultEnv("ROADSCAN_MAX_TOKENS", "1024"))
	if err != nil {
		panic("failed to parse max tokens from configuration, must be an integer")
	}

	rateLimit, err := strconv.Atoi(setDefaultEnv("ROADSCAN_RATE_LIMIT", "10"))
	if err != nil {
		panic("failed to parse rate limit from configuration, must be an integer")
	}

	port, err := strconv.Atoi(setDefaultEnv("ROADSCAN_HEALTH_PORT", "0"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	inputPrice, err := strconv.ParseFloat(setDefaultEnv("ROADSCAN_INPUT_USD_PER_MTOK", "3.0"), 64)
	if err != nil {
		panic("failed to parse input token price from configuration")
	}

	outputPrice, err := strconv.ParseFloat(setDefaultEnv("ROADSCAN_OUTPUT_USD_PER_MTOK", "15.0"), 64)
	if err != nil {
		panic("failed to parse output token price from configuration")
	}

	jpyRate, err := strconv.ParseFloat(setDefaultEnv("ROADSCAN_JPY_PER_USD", "150.0"), 64)
	if err != nil {
		panic("failed to parse JPY exchange rate from configuration")
	}

	return &Config{
		Env:              setDefaultEnv("ROADSCAN_ENV", "production"),
		MapsAPIKey:       os.Getenv("ROADSCAN_MAPS_KEY"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		LocationsFile:    setDefaultEnv("ROADSCAN_LOCATIONS_FILE", "data/locations.json"),
		OutputDir:        setDefaultEnv("ROADSCAN_OUTPUT_DIR", "output"),
		SnapshotDir:      os.Getenv("ROADSCAN_SNAPSHOT_DIR"),
		SelectMode:       setDefaultEnv("ROADSCAN_SELECT_MODE", "all"),
		SelectCount:      selectCount,
		Model:            setDefaultEnv("ROADSCAN_MODEL", "claude-sonnet-4-20250514"),
		MaxTokens:        maxTokens,
		InputUSDPerMTok:  inputPrice,
		OutputUSDPerMTok: outputPrice,
		JPYPerUSD:        jpyRate,
		RateLimit:        rateLimit,
		ReverseGeocode:   setDefaultEnv("ROADSCAN_REVERSE_GEOCODE", "false") == "true",
		Port:             port,
		Database: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     setDefaultEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
	}
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}
