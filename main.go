package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"league/app"
	"league/cmd"
	"league/config"
	"league/daemon"
	"league/log"
	"league/pty"
	"league/session"
	"league/session/git"
	"league/session/tmux"
	"league/update"

	"github.com/spf13/cobra"
)

var (
	version     = "1.0.0"
	programFlag string
	autoYesFlag bool
	daemonFlag  bool
	rootCmd     = &cobra.Command{
		Use:   "league",
		Short: "League - manage multiple AI coding agents across isolated git worktrees.",
		RunE: func(c *cobra.Command, args []string) error {
			ctx := context.Background()
			log.Initialize(daemonFlag)
			defer log.Close()

			if daemonFlag {
				cfg := config.LoadConfig()
				err := daemon.RunDaemon(cfg)
				if err != nil {
					log.ErrorLog.Printf("failed to start daemon %v", err)
				}
				return err
			}

			cfg := config.LoadConfig()

			if configDir, err := config.GetConfigDir(); err == nil {
				if installed := update.AutoUpdate(configDir, version); installed != "" {
					fmt.Printf("Updated to version %s. Restart to use it.\n", installed)
				}
			}

			// Program flag overrides config
			program := cfg.DefaultProgram
			if programFlag != "" {
				program = programFlag
			}
			// AutoYes flag overrides config
			autoYes := cfg.AutoYes
			if autoYesFlag {
				autoYes = true
			}
			if autoYes {
				defer func() {
					if err := daemon.LaunchDaemon(); err != nil {
						log.ErrorLog.Printf("failed to launch daemon: %v", err)
					}
				}()
			}
			// Kill any daemon that's running.
			if err := daemon.StopDaemon(); err != nil {
				log.ErrorLog.Printf("failed to stop daemon: %v", err)
			}

			return app.Run(ctx, program, autoYes)
		},
	}

	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Reset all stored instances",
		RunE: func(c *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			exec := cmd.MakeExecutor()

			state := config.LoadState()
			storage, err := session.NewStorage(state, exec, pty.SystemFactory{})
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			if err := storage.DeleteAllInstances(); err != nil {
				return fmt.Errorf("failed to reset storage: %w", err)
			}
			fmt.Println("Storage has been reset successfully")

			// Clean up tmux sessions
			if err := tmux.CleanupAll(exec); err != nil {
				// Log but don't fail - tmux might not be installed
				log.WarningLog.Printf("failed to cleanup tmux sessions: %v", err)
			} else {
				fmt.Println("Tmux sessions have been cleaned up")
			}

			if err := git.CleanupWorktrees(exec); err != nil {
				return fmt.Errorf("failed to cleanup worktrees: %w", err)
			}
			fmt.Println("Worktrees have been cleaned up")

			// Kill any daemon that's running.
			if err := daemon.StopDaemon(); err != nil {
				return err
			}
			fmt.Println("daemon has been stopped")

			return nil
		},
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print debug information like config paths",
		RunE: func(c *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()

			configDir, err := config.GetConfigDir()
			if err != nil {
				return fmt.Errorf("failed to get config directory: %w", err)
			}
			configJson, _ := json.MarshalIndent(cfg, "", "  ")

			fmt.Printf("Config: %s\n%s\n", filepath.Join(configDir, config.ConfigFileName), configJson)
			fmt.Printf("Default program: %s\n", cfg.DefaultProgram)
			fmt.Printf("Auto-yes: %v\n", cfg.AutoYes)
			fmt.Printf("Daemon poll interval: %dms\n", cfg.DaemonPollInterval)
			fmt.Printf("Branch prefix: %s\n", cfg.BranchPrefix)
			fmt.Printf("Daemon running: %v\n", daemon.IsDaemonRunning())

			return nil
		},
	}

	daemonCmd = &cobra.Command{
		Use:   "daemon",
		Short: "Run the daemon loop in the foreground",
		RunE: func(c *cobra.Command, args []string) error {
			log.Initialize(true)
			defer log.Close()

			cfg := config.LoadConfig()
			if err := daemon.RunDaemon(cfg); err != nil {
				log.ErrorLog.Printf("daemon exited: %v", err)
				return err
			}
			return nil
		},
	}

	stopDaemonCmd = &cobra.Command{
		Use:   "stop-daemon",
		Short: "Stop the background daemon, if one is running",
		RunE: func(c *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			if err := daemon.StopDaemon(); err != nil {
				return fmt.Errorf("failed to stop daemon: %w", err)
			}
			fmt.Println("daemon has been stopped")
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of league",
		Run: func(c *cobra.Command, args []string) {
			fmt.Printf("league version %s\n", version)
		},
	}
)

func init() {
	rootCmd.Flags().StringVarP(&programFlag, "program", "p", "",
		"Program to run in new instances (e.g. 'aider --model ollama_chat/gemma3:1b')")
	rootCmd.Flags().BoolVarP(&autoYesFlag, "autoyes", "y", false,
		"[experimental] If enabled, all instances will automatically accept prompts")
	rootCmd.Flags().BoolVar(&daemonFlag, "daemon", false, "Run a program that loads all sessions"+
		" and runs autoyes mode on them.")

	// Hide the daemonFlag as it's only for internal use
	err := rootCmd.Flags().MarkHidden("daemon")
	if err != nil {
		panic(err)
	}

	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(stopDaemonCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
	}
}
