package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/tickmesh/checkpoint"
)

func newInspectCmd(a *app) *cobra.Command {
	var shard int

	cmd := &cobra.Command{
		Use:   "inspect [key]",
		Short: "Print a stored checkpoint, or list the keys of a shard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Store.Kind != "badger" || a.cfg.Store.InMemory {
				return errors.New("inspect needs a persistent badger store (--store badger --path DIR)")
			}

			db, err := a.openBadger()
			if err != nil {
				return err
			}
			defer db.Close()

			store := db.Sub(shardPrefix(shard))
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				keys, err := store.Keys()
				if err != nil {
					return err
				}
				for _, k := range keys {
					fmt.Fprintln(out, k)
				}
				return nil
			}

			v, ok, err := store.Get(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s%s: %w", shardPrefix(shard), args[0], checkpoint.ErrNotFound)
			}

			var pretty bytes.Buffer
			if err := json.Indent(&pretty, []byte(v), "", "  "); err != nil {
				fmt.Fprintln(out, v)
				return nil
			}
			fmt.Fprintln(out, pretty.String())
			return nil
		},
	}

	cmd.Flags().IntVar(&shard, "shard", 0, "Shard whose checkpoints are inspected")

	return cmd
}
