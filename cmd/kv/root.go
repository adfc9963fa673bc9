package kv

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/ukvlib/ukv/cmd/util"
	"github.com/ukvlib/ukv/lib/storage"
)

var (
	kvStore    storage.Storage
	closeStore func() error

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:               "kv",
		Short:             "Perform typed key-value storage operations",
		PersistentPreRunE: setupStorage,
		PersistentPostRun: teardownStorage,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common backend flags to the KV command
	util.SetupStorageFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(incrCmd)
	KeyValueCommands.AddCommand(existsCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupStorage initializes the configured storage backend
func setupStorage(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Create the storage backend
	var err error
	kvStore, closeStore, err = util.GetStorage()
	return err
}

// teardownStorage releases the backend's resources
func teardownStorage(_ *cobra.Command, _ []string) {
	if closeStore == nil {
		return
	}
	if err := closeStore(); err != nil {
		log.Printf("error closing storage backend: %v\n", err)
	}
}
