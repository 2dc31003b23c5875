package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/session"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the user's unfinished test",
	Long: "Deletes the saved progress of the current user's unfinished test so the next " +
		"`take` starts fresh. Finished results are kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, _ := cmd.Flags().GetDuration("prune-older-than")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		kv, closeKV, err := openSnapshots(cmd.Context(), cmd, s)
		if err != nil {
			return err
		}
		defer closeKV()

		if err := session.ClearSnapshot(cmd.Context(), kv, userID(cmd)); err != nil {
			return err
		}
		fmt.Printf("Cleared unfinished test for %q.\n", userID(cmd))

		if olderThan > 0 {
			n, err := s.SnapshotKV().Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return fmt.Errorf("prune snapshots: %w", err)
			}
			fmt.Printf("Pruned %d stale snapshot keys.\n", n)
		}
		return nil
	},
}

func init() {
	addSnapshotFlag(resetCmd)
	resetCmd.Flags().Duration("prune-older-than", 0, "Also delete every user's local snapshot keys not written for this long, e.g. 720h")
}
