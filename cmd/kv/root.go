package kv

import (
	"github.com/ValentinKolb/prefKV/cmd/util"
	"github.com/ValentinKolb/prefKV/lib/prefs"
	"github.com/ValentinKolb/prefKV/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var plog = logger.GetLogger("cli")

// session is the state shared by the commands of one command tree
type session struct {
	v     *viper.Viper
	prefs store.Prefs
}

// AddCommands adds the store commands to root. Each of them opens the selected store
// before running and flushes and closes it afterwards.
func AddCommands(root *cobra.Command, v *viper.Viper) {
	s := &session{v: v}

	commands := []*cobra.Command{
		s.getCmd(),
		s.setCmd(),
		s.rmCmd(),
		s.hasCmd(),
		s.listCmd(),
		s.clearCmd(),
		s.exportCmd(),
		s.perfCmd(),
	}

	for _, cmd := range commands {
		cmd.PersistentPreRunE = s.setup
		cmd.RunE = s.withTeardown(cmd.RunE)
		root.AddCommand(cmd)
	}
}

// setup initializes the process-wide registry and resolves the selected store
func (s *session) setup(cmd *cobra.Command, _ []string) error {
	util.InitConfig(s.v)

	// Bind command flags to viper
	if err := util.BindCommandFlags(s.v, cmd); err != nil {
		return err
	}

	if err := prefs.Init(util.GetConfig(s.v)); err != nil {
		return err
	}

	var err error
	if name := util.GetStoreName(s.v); name != "" {
		s.prefs, err = prefs.WithName(name)
	} else {
		s.prefs, err = prefs.With()
	}
	if err != nil {
		// RunE and with it the teardown will not run
		_ = s.teardown()
		return err
	}
	plog.Debugf("%s: using store %s", cmd.Name(), s.prefs.Name())
	return nil
}

// withTeardown wraps run so that the teardown also happens when run fails.
// cobra skips the post run hooks of a failed command.
func (s *session) withTeardown(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if closeErr := s.teardown(); err == nil {
				err = closeErr
			}
		}()
		return run(cmd, args)
	}
}

// teardown writes all deferred writes and releases the store files
func (s *session) teardown() error {
	return prefs.Close()
}
