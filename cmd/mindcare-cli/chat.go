package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"mindcare-go/internal/config"
	"mindcare-go/internal/model"
	"mindcare-go/internal/repository/memory"
	"mindcare-go/internal/responder"
	"mindcare-go/internal/service"
)

type chatOptions struct {
	name string
	seed int64
	pace bool
}

func newChatCmd() *cobra.Command {
	var opts chatOptions
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant in the terminal",
		Long: `Starts an offline conversation backed by in-memory stores.

Lines starting with "/" run a quick action (/menu, /breathing, /mood-check,
/coping). /quit ends the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "friend", "name used in the welcome message")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "seed for reply selection (0 uses the clock)")
	cmd.Flags().BoolVar(&opts.pace, "pace", false, "wait the configured typing delays before each reply")
	return cmd
}

func runChat(ctx context.Context, in io.Reader, out io.Writer, opts chatOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	pacing := config.DefaultChatConfig()
	if !opts.pace {
		pacing = config.ChatConfig{HistoryLimit: pacing.HistoryLimit}
	}
	progress := service.NewProgressService(memory.NewProgressStore(), nil, nil, 0)
	chat := service.NewChatService(
		memory.NewConversationStore(),
		memory.NewAssessmentStore(),
		responder.New(responder.NewPicker(opts.seed)),
		progress,
		pacing,
	)
	user := &model.User{ID: 1, Username: "local", DisplayName: opts.name}

	turn, err := chat.OpenConversation(ctx, user)
	if err != nil {
		return err
	}
	printTurn(out, turn, opts.pace)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" {
			return nil
		}

		if action, ok := strings.CutPrefix(line, "/"); ok {
			turn, err = chat.QuickAction(ctx, user, action)
		} else {
			turn, err = chat.SendMessage(ctx, user, line)
		}
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			continue
		case errors.Is(err, service.ErrUnknownQuickAction):
			fmt.Fprintf(out, "unknown action %q\n", line)
			continue
		case err != nil:
			return err
		}
		printTurn(out, turn, opts.pace)
	}
}

func printTurn(out io.Writer, turn *model.Turn, pace bool) {
	for _, s := range turn.Steps {
		if pace && s.Delay > 0 {
			time.Sleep(s.Delay)
		}
		if s.Kind == model.StepNotification {
			fmt.Fprintf(out, "[%s]\n", s.Notification)
			continue
		}
		fmt.Fprintf(out, "assistant: %s\n", s.Message.Content)
		if q := s.Message.Question; q != nil {
			printQuestion(out, q)
		}
	}
}

func printQuestion(out io.Writer, q *model.QuestionDescriptor) {
	switch q.Kind {
	case model.QuestionKindSingleChoice:
		fmt.Fprintf(out, "  (%d/%d) options: %s\n", q.Number, q.Total, strings.Join(q.Options, " | "))
	case model.QuestionKindScale:
		fmt.Fprintf(out, "  (%d/%d) answer 1-10\n", q.Number, q.Total)
	default:
		fmt.Fprintf(out, "  (%d/%d)\n", q.Number, q.Total)
	}
}
