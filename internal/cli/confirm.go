package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qcteam/teamcal/internal/app"
	"github.com/qcteam/teamcal/internal/confirm"
	"github.com/qcteam/teamcal/internal/usecase"
)

// answerConfirmation resolves req with preset, or asks on stdin when preset is nil.
// A yes/no request accepts "y" or "yes"; a typed request needs the exact text.
func answerConfirmation(cmd *cobra.Command, c *app.Container, req confirm.Request, preset *confirm.Answer) (confirm.Outcome, error) {
	uc := c.ResolveConfirmationUseCase()
	w := cmd.OutOrStdout()

	var ans confirm.Answer
	if preset != nil {
		ans = *preset
	} else {
		_, _ = fmt.Fprintln(w, req.Prompt)
		if req.RequireText != "" {
			_, _ = fmt.Fprint(w, "> ")
		} else {
			_, _ = fmt.Fprint(w, "[y/N] ")
		}
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			_, _ = uc.Execute(cmd.Context(), usecase.ResolveConfirmationInput{Token: req.Token, Cancel: true})
			return confirm.Outcome{}, fmt.Errorf("read answer: %w", err)
		}
		line = strings.TrimSpace(line)
		if req.RequireText != "" {
			ans.Text = line
		} else {
			ans.Yes = strings.EqualFold(line, "y") || strings.EqualFold(line, "yes")
		}
	}

	out, err := uc.Execute(cmd.Context(), usecase.ResolveConfirmationInput{Token: req.Token, Answer: ans})
	if err != nil {
		return confirm.Outcome{}, err
	}
	if out.Outcome.Notice != "" {
		_, _ = fmt.Fprintln(w, out.Outcome.Notice)
	}
	return out.Outcome, nil
}
