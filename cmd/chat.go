package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spigell/hh-screener/internal/interview"
	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/metrics"
	"github.com/spigell/hh-screener/internal/registry"

	"github.com/manifoldco/promptui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	commandReset   = "/reset"
	commandSummary = "/summary"
	commandExport  = "/export"
)

var errExit = errors.New("exit requested")

var exportPrompt = promptui.Select{
	Label: "Save the interview to a file?",
	Items: []string{PromptYes, PromptNo},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run a screening interview in the terminal",
	// Both commands own an --export-dir flag, so it is bound to the key only for the running one.
	PreRun: func(cmd *cobra.Command, _ []string) {
		viper.BindPFlag("export.dir", cmd.Flags().Lookup("export-dir"))
	},
	Run: func(_ *cobra.Command, _ []string) {
		chat()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("export-dir", "e", "", "directory for interview exports. Default is the system temp directory.")
	chatCmd.Flags().StringP("company", "c", "", "company name used in the greeting")

	viper.BindPFlag("interview.company", chatCmd.Flags().Lookup("company"))
}

// chat runs one interview at a time; logs go to stderr so they do not mix with the dialog.
func chat() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), "stderr")
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hh-screener chat", zap.String("version", version))

	m := metrics.New(prometheus.NewRegistry())
	machine, err := newMachine(ctx, config, m, logger)
	if err != nil {
		logger.Fatal("creating the interview", zap.Error(err))
	}

	sessions := registry.New(m, logger.Named("registry"))
	start := func(s *interview.Session) error {
		fmt.Println(machine.Start(s).Text)
		return nil
	}

	id, err := sessions.Create(start)
	if err != nil {
		logger.Fatal("creating a session", zap.Error(err))
	}

	input := promptui.Prompt{Label: "You"}
	for {
		text, err := input.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				logger.Info("exiting", zap.String("reason", "input closed"))
				return
			}
			logger.Fatal("reading input", zap.Error(err))
		}

		id, err = handleChatInput(ctx, sessions, machine, id, text, config.Export.Dir, logger)
		if err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// handleChatInput runs one line of input and returns the id of the session to continue with.
func handleChatInput(ctx context.Context, sessions *registry.Registry, machine *interview.Machine, id, text, exportDir string, logger *zap.Logger) (string, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case commandReset:
		logger.Info("restarting the interview", zap.String("session_id", id))
		return sessions.Reset(id, func(s *interview.Session) error {
			fmt.Println(machine.Start(s).Text)
			return nil
		})
	case commandSummary:
		return id, sessions.With(id, func(s *interview.Session) error {
			fmt.Println(interview.Summarize(s))
			return nil
		})
	case commandExport:
		return id, sessions.With(id, func(s *interview.Session) error {
			return exportSession(s, exportDir, logger)
		})
	}

	var ended bool
	err := sessions.With(id, func(s *interview.Session) error {
		reply, err := machine.Handle(ctx, s, text)
		fmt.Println(reply.Text)
		if err != nil {
			var fatal *interview.FatalSessionError
			if errors.As(err, &fatal) {
				logger.Error("the interview was terminated", zap.Error(err))
			} else {
				return err
			}
		}

		ended = reply.Progress.Ended
		if !ended {
			return nil
		}

		_, action, err := exportPrompt.Run()
		if err != nil {
			return err
		}
		if action == PromptYes {
			return exportSession(s, exportDir, logger)
		}
		return nil
	})
	if err != nil {
		return id, err
	}
	if ended {
		return id, errExit
	}
	return id, nil
}

func exportSession(s *interview.Session, dir string, logger *zap.Logger) error {
	filename, err := interview.WriteExport(s, dir)
	if err != nil {
		return fmt.Errorf("export interview: %w", err)
	}
	logger.Info("interview exported", zap.String("filename", filename))
	return nil
}
