package kv

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/ValentinKolb/prefKV/cmd/util"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (s *session) getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			out := cmd.OutOrStdout()

			stored, ok := s.prefs.Store().Get(key)
			if !ok {
				fmt.Fprintf(out, "key=%s, found=false\n", key)
				return nil
			}

			typ, _ := cmd.Flags().GetString("type")
			if typ == "" {
				fmt.Fprintf(out, "key=%s, found=true, type=%s, value=%s\n", key, stored.Type, formatValue(stored))
				return nil
			}

			value, err := get(s.prefs, typ, key)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "key=%s, found=true, type=%s, value=%s\n", key, typ, value)
			return nil
		},
	}
	cmd.Flags().String("type", "", util.WrapString("Read the value with the getter of this type (string, int, long, float, double, bool, set). A value of another type reads as the default"))
	return cmd
}

func (s *session) setCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, raw := args[0], args[1]
			typ, _ := cmd.Flags().GetString("type")
			async, _ := cmd.Flags().GetBool("async")

			editor := s.prefs.Edit()
			if err := put(editor, typ, key, raw); err != nil {
				return err
			}

			if async {
				editor.Apply()
				fmt.Fprintln(cmd.OutOrStdout(), "applied successfully")
				return nil
			}
			if !editor.Commit() {
				return fmt.Errorf("commit of %s failed", key)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "set successfully")
			return nil
		},
	}
	cmd.Flags().String("type", "string", util.WrapString("Type of the value (string, int, long, float, double, bool, set). Set members are comma separated"))
	cmd.Flags().Bool("async", false, util.WrapString("Use a deferred write instead of a synchronous commit"))
	return cmd
}

func (s *session) rmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm [key]",
		Short: "Removes a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			async, _ := cmd.Flags().GetBool("async")

			if async {
				s.prefs.ApplyRemove(key)
			} else if !s.prefs.CommitRemove(key) {
				return fmt.Errorf("commit of %s failed", key)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "removed successfully")
			return nil
		},
	}
	cmd.Flags().Bool("async", false, util.WrapString("Use a deferred write instead of a synchronous commit"))
	return cmd
}

func (s *session) hasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			fmt.Fprintf(cmd.OutOrStdout(), "key=%s, found=%t\n", key, s.prefs.Contains(key))
			return nil
		},
	}
}

func (s *session) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists all entries of the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := s.prefs.Store().GetAll()

			keys := make([]string, 0, len(entries))
			for k := range entries {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			out := cmd.OutOrStdout()
			for _, k := range keys {
				v := entries[k]
				fmt.Fprintf(out, "%-24s %-7s %s\n", k, v.Type, formatValue(v))
			}
			fmt.Fprintf(out, "%d entries in %s\n", len(keys), s.prefs.Name())
			return nil
		},
	}
}

func (s *session) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Removes all entries of the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n := len(s.prefs.Store().GetAll())
			s.prefs.Clear()
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s (%d entries)\n", s.prefs.Name(), n)
			return nil
		},
	}
}

func (s *session) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Writes all entries of the store to stdout",
		Long: `Writes all entries of the store to stdout as json, toml or yaml.
Doubles are stored as the bits of a long and are exported as such.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("format")
			return export(cmd.OutOrStdout(), format, s.prefs.GetAll())
		},
	}
	cmd.Flags().String("format", "json", util.WrapString("Output format (json, toml, yaml)"))
	return cmd
}

// export encodes the entries in the given format
func export(w io.Writer, format string, entries map[string]any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "toml":
		return toml.NewEncoder(w).Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("invalid format %q (expected one of: json, toml, yaml)", format)
	}
}
