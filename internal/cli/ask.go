package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"docchat/internal/domain"
	"docchat/internal/service"
)

var askQuestions []string

var askCmd = &cobra.Command{
	Use:   "ask FILE...",
	Short: "Answer questions about files and exit",
	Long: `Processes the files, then asks each --question in order within one
conversation and prints the answers.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringArrayVarP(&askQuestions, "question", "q", nil, "question to ask (repeatable)")
	_ = askCmd.MarkFlagRequired("question")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	docs, err := readDocuments(args)
	if err != nil {
		return err
	}
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Log.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sess := a.Sessions.Create()
	defer func() { _ = a.Sessions.End(context.Background(), sess.ID) }()

	report, err := a.Service.Process(ctx, sess, docs)
	for _, line := range service.ReportLines(report) {
		cmd.PrintErrln(line)
	}
	if err != nil {
		return errors.New(service.UserMessage(err))
	}
	if report.Summary != "" {
		cmd.Println("Summary:", report.Summary)
		cmd.Println()
	}

	for _, q := range askQuestions {
		turns, err := a.Service.Ask(ctx, sess, q)
		if err != nil {
			return errors.New(service.UserMessage(err))
		}
		cmd.Println(formatTurn(turns[len(turns)-2]))
		cmd.Println(formatTurn(turns[len(turns)-1]))
		cmd.Println()
	}
	return nil
}

func formatTurn(t domain.Turn) string {
	label := "AI"
	if t.Speaker == domain.SpeakerUser {
		label = "You"
	}
	return fmt.Sprintf("%s: %s", label, strings.TrimSpace(t.Message))
}
