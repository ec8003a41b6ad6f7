package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"docchat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat FILE...",
	Short: "Chat about files in the terminal",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	docs, err := readDocuments(args)
	if err != nil {
		return err
	}
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Log.Sync()

	sess := a.Sessions.Create()
	defer func() { _ = a.Sessions.End(context.Background(), sess.ID) }()

	m := tui.New(cmd.Context(), a.Service, sess, docs)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	return err
}
