package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/mdc/internal/controller"
	"github.com/Zuo-Peng/mdc/internal/render"
	"github.com/Zuo-Peng/mdc/internal/session"
)

func askCmd(serverURL *string) *cobra.Command {
	var showQuestion bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question about the uploaded documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")

			ctx := cmd.Context()
			a, err := openApp(ctx, *serverURL)
			if err != nil {
				return err
			}
			defer a.Close()

			var answer session.Message
			err = spinWhile(" Thinking...", func() error {
				var err error
				answer, err = a.chatter.SendMessage(ctx, question)
				return err
			})
			switch {
			case errors.Is(err, controller.ErrEmptyMessage):
				return errors.New("question is empty")
			case errors.Is(err, controller.ErrNoActiveSession):
				return fmt.Errorf("%s (run 'mdc upload <path>...')", controller.NoticeNoActiveSession)
			case err != nil:
				errColor.Fprintln(os.Stderr, controller.NoticeChatError)
				return err
			}

			if !showQuestion {
				fmt.Println(answer.Text)
				return nil
			}
			out, _ := render.Transcript(a.sess.Transcript(), render.Options{
				Plain:     !term.IsTerminal(int(os.Stdout.Fd())),
				ErrorText: controller.AnswerErrorText,
			})
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showQuestion, "transcript", "t", false, "Print the question and answer as a transcript")

	return cmd
}
