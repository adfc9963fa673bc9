package kv

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/ukvlib/ukv/lib/storage"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Stores a string value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			ttl, err := cmd.Flags().GetDuration("ttl")
			if err != nil {
				return err
			}

			if ttl > 0 {
				err = kvStore.StoreStringWithExpiry(key, value, ttl)
			} else {
				err = kvStore.StoreString(key, value)
			}
			if err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the string value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, err := kvStore.LoadString(key)
			if storage.IsNotFound(err) {
				fmt.Printf("key=%s, found=false\n", key)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=true, value=%s\n", key, value)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key regardless of its kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := kvStore.Delete(key); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	incrCmd = &cobra.Command{
		Use:   "incr [key] [delta]",
		Short: "Atomically adds a delta (default 1, may be negative) to a counter",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			delta := int64(1)
			if len(args) == 2 {
				var err error
				delta, err = strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("delta must be a number: %w", err)
				}
			}

			value, err := kvStore.Increment(key, delta)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, value=%d\n", key, value)
			return nil
		},
	}
	existsCmd = &cobra.Command{
		Use:   "exists [key]",
		Short: "Checks if a key holds a live entry of any kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			found, err := kvStore.Exists(key)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%t\n", key, found)
			return nil
		},
	}
)

func init() {
	setCmd.Flags().Duration("ttl", 0*time.Second, "Time until the entry expires (0 = never)")
}
