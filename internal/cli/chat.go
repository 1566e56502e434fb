package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ashureev/hr-assistant/internal/app"
	"github.com/ashureev/hr-assistant/internal/config"
	"github.com/ashureev/hr-assistant/internal/conversation"
	"github.com/ashureev/hr-assistant/internal/domain"
	"github.com/spf13/cobra"
)

const chatBanner = `HR assistant. Type a request, answer y/n to confirm, "quit" to exit.`

func newChatCmd(opts *globalOptions) *cobra.Command {
	var noArchive bool
	var userID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if noArchive {
				cfg.ArchiveEnabled = false
			}

			assistant, err := app.New(cmd.Context(), cfg, opts.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer assistant.Close()

			return runChat(cmd.Context(), assistant.Manager, userID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "Do not write the SQLite archive")
	cmd.Flags().StringVar(&userID, "user", "", "User ID recorded in the audit log (default: DEFAULT_USER_ID)")

	return cmd
}

// chatSession is the subset of the conversation manager the REPL drives.
type chatSession interface {
	Submit(ctx context.Context, in conversation.SubmitInput) (conversation.SubmitOutput, error)
	Confirm(ctx context.Context, in conversation.ConfirmInput) (conversation.ConfirmOutput, error)
}

func runChat(ctx context.Context, chat chatSession, userID string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	var sessionID, pendingID string

	fmt.Fprintln(out, chatBanner)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}

		if pendingID != "" {
			if decision, ok := parseDecision(line); ok {
				res, err := chat.Confirm(ctx, conversation.ConfirmInput{CommandID: pendingID, Confirmed: decision})
				pendingID = ""
				if err != nil && !errors.Is(err, domain.ErrInternal) {
					fmt.Fprintln(out, domain.UserMessage(err, err.Error()))
					continue
				}
				printMessage(out, res.Message)
				continue
			}
		}

		res, err := chat.Submit(ctx, conversation.SubmitInput{SessionID: sessionID, UserID: userID, Text: line})
		if err != nil {
			fmt.Fprintln(out, domain.UserMessage(err, err.Error()))
			continue
		}
		sessionID = res.SessionID
		pendingID = ""
		if res.NeedsConfirmation && res.CommandExecution != nil {
			pendingID = res.CommandExecution.ID
		}
		printMessage(out, res.Message)
	}
}

func parseDecision(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "y", "yes", "confirm", "ok":
		return true, true
	case "n", "no", "cancel":
		return false, true
	}
	return false, false
}

func printMessage(w io.Writer, msg domain.Message) {
	fmt.Fprintln(w, msg.Content)
	if msg.Type == domain.MessageConfirmation {
		fmt.Fprintln(w, "[y/n]")
	}
}
