package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bhanmrinal/cf-project/internal/logger"
	"github.com/bhanmrinal/cf-project/internal/resume"
)

const (
	PromptChat    = "Chat"
	PromptUpload  = "Upload a resume"
	PromptHistory = "Show version history"
	PromptRevert  = "Revert to a version"
	PromptAgents  = "List agents"
	PromptExit    = "Exit"
	PromptBack    = "back"
)

var errExit = errors.New("exit requested")

var menu = promptui.Select{
	Label: "What next?",
	Items: []string{PromptChat, PromptUpload, PromptHistory, PromptRevert, PromptAgents, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Chat with careerflow in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume", "r", "", "resume file to start with (json with sections or \"## Title\" text)")
	runCmd.Flags().StringP("user", "u", "", "name recorded on your messages")
}

// session is one interactive conversation.
type session struct {
	deps           *deps
	logger         *zap.Logger
	conversationID string
}

// run is the interactive chat command.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	d, err := buildDeps(ctx, config, logger)
	if err != nil {
		logger.Fatal("building dependencies", zap.Error(err))
	}
	defer d.Close()

	user, _ := cmd.Flags().GetString("user")
	conv, err := d.router.StartConversation(ctx, user)
	if err != nil {
		logger.Fatal("starting a conversation", zap.Error(err))
	}

	s := &session{deps: d, logger: logger, conversationID: conv.ID}

	if path, _ := cmd.Flags().GetString("resume"); path != "" {
		if err := s.upload(ctx, path); err != nil {
			logger.Fatal("loading resume", zap.Error(err), zap.String("file", path))
		}
	}

	for {
		_, action, err := menu.Run()
		if err != nil {
			// Ctrl+C or Ctrl+D on the menu ends the session.
			logger.Info("exiting", zap.String("reason", err.Error()))
			return
		}

		if err := s.handleAction(ctx, action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Error("action failed", zap.String("action", action), zap.Error(err))
		}
	}
}

func (s *session) handleAction(ctx context.Context, action string) error {
	switch action {
	case PromptChat:
		return s.chat(ctx)
	case PromptUpload:
		path, err := (&promptui.Prompt{Label: "Resume file", Validate: nonEmpty}).Run()
		if err != nil {
			return nil
		}
		return s.upload(ctx, strings.TrimSpace(path))
	case PromptHistory:
		return s.history(ctx)
	case PromptRevert:
		return s.revert(ctx)
	case PromptAgents:
		for _, a := range s.deps.agents.Describe() {
			fmt.Printf("* %s: %s\n", a.Name, a.Description)
			if a.Example != "" {
				fmt.Printf("  e.g. %q\n", a.Example)
			}
		}
		return nil
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// chat keeps asking for messages until an empty line or "back".
func (s *session) chat(ctx context.Context) error {
	for {
		message, err := (&promptui.Prompt{Label: "You (empty line to go back)"}).Run()
		if err != nil {
			return nil
		}
		message = strings.TrimSpace(message)
		if message == "" || message == PromptBack {
			return nil
		}

		reply, err := s.deps.router.HandleTurn(ctx, s.conversationID, message)
		if err != nil {
			return err
		}

		fmt.Printf("\n%s\n\n", reply.Reply)
		if reply.Version != nil {
			fmt.Printf("Saved as version %d: %s\n\n", reply.Version.Seq, reply.Version.Label)
		}
		s.logger.Debug("turn finished",
			zap.String("intent", reply.Intent),
			zap.String("agent", reply.Agent),
			zap.Bool("failed", reply.Failed),
		)
	}
}

func (s *session) upload(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}

	content, err := resume.Decode(data)
	if err != nil {
		return err
	}
	if content.IsEmpty() {
		return fmt.Errorf("resume file %q has no content", path)
	}

	v, err := s.deps.router.AttachResume(ctx, s.conversationID, content, "uploaded from "+filepath.Base(path))
	if err != nil {
		return err
	}

	s.logger.Info("resume loaded",
		zap.String("resume_id", v.ResumeID),
		zap.Int("sections", len(v.Content.Sections)),
	)
	return nil
}

func (s *session) resumeID(ctx context.Context) (string, error) {
	conv, err := s.deps.conversations.Get(ctx, s.conversationID)
	if err != nil {
		return "", err
	}
	if conv.ResumeID == "" {
		return "", errors.New("no resume uploaded yet")
	}
	return conv.ResumeID, nil
}

func (s *session) history(ctx context.Context) error {
	id, err := s.resumeID(ctx)
	if err != nil {
		return err
	}

	versions, current, err := s.deps.versions.History(ctx, id)
	if err != nil {
		return err
	}
	for _, v := range versions {
		fmt.Println(versionLine(v, current))
	}
	return nil
}

func (s *session) revert(ctx context.Context) error {
	id, err := s.resumeID(ctx)
	if err != nil {
		return err
	}

	versions, current, err := s.deps.versions.History(ctx, id)
	if err != nil {
		return err
	}

	items := make([]string, 0, len(versions)+1)
	for _, v := range versions {
		items = append(items, versionLine(v, current))
	}

	_, selected, err := (&promptui.Select{
		Label: "Choose a version and press ENTER",
		Items: append(items, PromptBack),
	}).Run()
	if err != nil || selected == PromptBack {
		return nil
	}

	seq, err := parseVersionLine(selected)
	if err != nil {
		return err
	}

	v, err := s.deps.versions.Revert(ctx, id, seq)
	if err != nil {
		return err
	}
	fmt.Printf("Current version is now %d: %s\n", v.Seq, v.Label)
	return nil
}

func versionLine(v resume.Version, current int) string {
	marker := " "
	if v.Seq == current {
		marker = "*"
	}
	return fmt.Sprintf("%s v%d %s (%s)", marker, v.Seq, v.Label, v.CreatedAt.Format("2006-01-02 15:04"))
}

func parseVersionLine(line string) (int, error) {
	fields := strings.Fields(strings.TrimPrefix(line, "*"))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "v") {
		return 0, fmt.Errorf("there is no version in %q", line)
	}
	return strconv.Atoi(strings.TrimPrefix(fields[0], "v"))
}

func nonEmpty(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("must not be empty")
	}
	return nil
}
