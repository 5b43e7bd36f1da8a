package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var errNotFound = errors.New("key not found")

// withSession opens a registry for the duration of run.
func withSession(flags *rootFlags, run func(cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		s, err := flags.open(cmd)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, s.Close())
		}()
		return run(cmd, s, args)
	}
}

func newGetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the cached value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(flags, func(cmd *cobra.Command, s *session, args []string) error {
			v, ok := s.registry.Provider().Get(cmd.Context(), args[0])
			if !ok {
				return errNotFound
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		}),
	}
}

func newSetCmd(flags *rootFlags) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a value in both tiers",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(flags, func(cmd *cobra.Command, s *session, args []string) error {
			s.registry.Provider().Set(cmd.Context(), args[0], args[1], ttl)
			s.warnIfLocalOnly(cmd)
			return nil
		}),
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Remote TTL (0 uses the configured default)")
	return cmd
}

func newDelCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "del <key>...",
		Aliases: []string{"delete"},
		Short:   "Delete keys from both tiers",
		Args:    cobra.MinimumNArgs(1),
		RunE: withSession(flags, func(cmd *cobra.Command, s *session, args []string) error {
			for _, key := range args {
				s.registry.Provider().Delete(cmd.Context(), key)
			}
			s.warnIfLocalOnly(cmd)
			return nil
		}),
	}
}

func newPurgeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "purge <pattern>",
		Short: "Delete every key matching a glob ('*' any run, '?' one character)",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(flags, func(cmd *cobra.Command, s *session, args []string) error {
			s.registry.Provider().DeleteByPattern(cmd.Context(), args[0])
			s.warnIfLocalOnly(cmd)
			return nil
		}),
	}
}

func newExistsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <key>",
		Short: "Report whether a key is cached",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(flags, func(cmd *cobra.Command, s *session, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), s.registry.Provider().Exists(cmd.Context(), args[0]))
			return nil
		}),
	}
}

func newExpireCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "expire <key> <ttl>",
		Short: "Change the remote TTL of a key",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(flags, func(cmd *cobra.Command, s *session, args []string) error {
			ttl, err := time.ParseDuration(args[1])
			if err != nil {
				return fmt.Errorf("invalid ttl %q: %w", args[1], err)
			}
			if ttl <= 0 {
				return fmt.Errorf("ttl must be positive, got %s", ttl)
			}
			s.registry.Provider().Expire(cmd.Context(), args[0], ttl)
			s.warnIfLocalOnly(cmd)
			return nil
		}),
	}
}
