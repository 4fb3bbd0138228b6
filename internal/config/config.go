package config

import (
	"os"
	"path/filepath"
	"strconv"
)

const appName = "profilegen"

// AniListConfig names the repository variables and secrets the metrics job
// reads its AniList plugin parameters from.
type AniListConfig struct {
	UserSecret         string
	LimitVar           string
	LimitCharactersVar string
	SectionsVar        string
}

// ImageConfig sets the size of injected character images.
type ImageConfig struct {
	Width  int
	Height int
}

// AppConfig is populated from environment variables. A .env file is loaded by
// the binary through github.com/joho/godotenv/autoload; real environment
// variables take precedence.
type AppConfig struct {
	ConfigDir string
	DataDir   string
	LogLevel  string
	LogFormat string
	AssetDir  string
	Branch    string
	Hireable  bool
	AniList   AniListConfig
	Image     ImageConfig
}

// Load reads configuration from the environment.
func Load() *AppConfig {
	configDir, _ := GetConfigDir()
	dataDir, _ := GetDataDir()
	return &AppConfig{
		ConfigDir: configDir,
		DataDir:   dataDir,
		LogLevel:  getEnv("PROFILEGEN_LOG_LEVEL", "info"),
		LogFormat: getEnv("PROFILEGEN_LOG_FORMAT", "console"),
		AssetDir:  getEnv("PROFILEGEN_ASSET_DIR", ".github/assets"),
		Branch:    getEnv("PROFILEGEN_BRANCH", "metrics-renders"),
		Hireable:  getEnvBool("PROFILEGEN_HIREABLE", false),
		AniList: AniListConfig{
			UserSecret:         getEnv("ANILIST_USER_SECRET", "ANILIST_USER"),
			LimitVar:           getEnv("ANILIST_LIMIT_VAR", "ANILIST_LIMIT"),
			LimitCharactersVar: getEnv("ANILIST_LIMIT_CHARACTERS_VAR", "ANILIST_LIMIT_CHARACTERS"),
			SectionsVar:        getEnv("ANILIST_SECTIONS_VAR", "ANILIST_SECTIONS"),
		},
		Image: ImageConfig{
			Width:  getEnvInt("PROFILEGEN_IMAGE_WIDTH", 36),
			Height: getEnvInt("PROFILEGEN_IMAGE_HEIGHT", 54),
		},
	}
}

// GetConfigDir returns the directory holding profilegen configuration.
func GetConfigDir() (string, error) {
	if dir := os.Getenv("PROFILEGEN_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// GetDataDir returns the directory holding the render ledger.
func GetDataDir() (string, error) {
	if dir := os.Getenv("PROFILEGEN_DATA_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName, "data"), nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
