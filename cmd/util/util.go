package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/ukvlib/ukv/lib/engine"
	"github.com/ukvlib/ukv/lib/engine/sharded"
	"github.com/ukvlib/ukv/lib/storage"
	"github.com/ukvlib/ukv/lib/storage/memstore"
	"github.com/ukvlib/ukv/lib/storage/redisstore"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStorageFlags adds common backend selection flags to a command
func SetupStorageFlags(cmd *cobra.Command) {
	key := "backend"
	cmd.PersistentFlags().String(key, "memory", WrapString("Storage backend to use (memory, redis)"))

	key = "shards"
	cmd.PersistentFlags().Int(key, 0, WrapString("Number of shards for the memory backend (0 = number of CPUs)"))

	key = "sweep-interval"
	cmd.PersistentFlags().Duration(key, 100*time.Millisecond, WrapString("Pause between background expiry sweeps of the memory backend (0 disables the sweep, expired entries are then only reclaimed on access)"))

	key = "integer-base"
	cmd.PersistentFlags().Int64(key, 0, WrapString("Starting value for counters created by incr"))

	key = "redis-addr"
	cmd.PersistentFlags().String(key, "localhost:6379", WrapString("Address of the Redis server (redis backend only)"))

	key = "redis-password"
	cmd.PersistentFlags().String(key, "", WrapString("Password for the Redis server (redis backend only)"))

	key = "redis-db"
	cmd.PersistentFlags().Int(key, 0, WrapString("Redis database number (redis backend only)"))

	key = "redis-namespace"
	cmd.PersistentFlags().String(key, "ukv:", WrapString("Prefix for all Redis keys (redis backend only)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("ukv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetBackendName returns the configured backend identifier
func GetBackendName() string {
	return viper.GetString("backend")
}

// GetStorage creates the configured storage backend. The returned teardown
// function releases the backend's resources and must be called once the
// store is no longer needed.
func GetStorage() (storage.Storage, func() error, error) {
	switch backend := GetBackendName(); backend {
	case "memory":
		store := memstore.New(func() engine.KVEngine {
			return sharded.New(&sharded.Options{
				ShardCount:    viper.GetInt("shards"),
				SweepInterval: viper.GetDuration("sweep-interval"),
			})
		}, &memstore.Options{
			DefaultIntegerBase: viper.GetInt64("integer-base"),
		})
		return store, store.Close, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     viper.GetString("redis-addr"),
			Password: viper.GetString("redis-password"),
			DB:       viper.GetInt("redis-db"),
		})
		store := redisstore.New(client, &redisstore.Options{
			Namespace:          viper.GetString("redis-namespace"),
			DefaultIntegerBase: viper.GetInt64("integer-base"),
		})
		return store, client.Close, nil

	default:
		return nil, nil, fmt.Errorf("invalid backend %s", backend)
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
