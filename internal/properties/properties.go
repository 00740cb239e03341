package properties

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv loads the first .env file found next to the binary or in its parents.
// Missing files are not an error: every property has a default.
func LoadEnv() string {
	for _, candidate := range []string{"../../.env", "../.env", ".env"} {
		if err := godotenv.Load(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func RootPath() string {
	return getenv("ROOT_PATH", ".")
}

// ImageDir is the folder holding the exported Carte_<year> maps.
func ImageDir() string {
	return getenv("IMAGE_DIR", filepath.Join(RootPath(), "images"))
}

// ImageExt is the canonical on-disk extension of the maps for this deployment.
func ImageExt() string {
	ext := strings.ToLower(getenv("IMAGE_EXT", "jpg"))
	return strings.TrimPrefix(ext, ".")
}

func ResultPath() string {
	return filepath.Join(RootPath(), "data", "result")
}

// Years restricts the catalog to a subset of the index table. Empty means every year of the table.
func Years() []string {
	raw := getenv("YEARS", "")
	if raw == "" {
		return nil
	}
	var years []string
	for _, y := range strings.Split(raw, ",") {
		if y = strings.TrimSpace(y); y != "" {
			years = append(years, y)
		}
	}
	return years
}

// IndexTablePath points at the NDVI/NDWI CSV table. Empty means the embedded default table.
func IndexTablePath() string {
	return getenv("INDEX_TABLE_PATH", "")
}

// BasinPath points at the basin GeoJSON. Empty means the embedded outline.
func BasinPath() string {
	return getenv("BASIN_GEOJSON_PATH", "")
}

func Port() int {
	port, err := strconv.Atoi(getenv("PORT", "8080"))
	if err != nil || port <= 0 {
		return 8080
	}
	return port
}

func AllowedOrigins() []string {
	raw := getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000")
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func LogLevel() string {
	return getenv("LOG_LEVEL", "info")
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}

func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}
