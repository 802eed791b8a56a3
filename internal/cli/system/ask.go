package system

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/salonlux/internal/advisor"
	"github.com/julianstephens/salonlux/internal/cli"
	"github.com/julianstephens/salonlux/internal/keyring"
	"github.com/julianstephens/salonlux/internal/logger"
)

var newAdvisor = advisor.New

// AskCmd asks the style advisor a question. Without a query it starts an
// interactive conversation that ends on EOF or "sair".
type AskCmd struct {
	Query []string `arg:"" optional:"" help:"Question for the advisor."`
}

func (c *AskCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	apiKey, err := keyring.Resolve(keyring.AdvisorAPIKey)
	if err != nil {
		logger.Warn("Could not read advisor key from keyring", "error", err)
	}
	adv, err := newAdvisor(bg, apiKey, ctx.Config.AdvisorModel)
	if err != nil {
		return err
	}
	defer adv.Close()

	out := ctx.Stdout()
	conv := advisor.NewConversation(adv)

	if query := strings.TrimSpace(strings.Join(c.Query, " ")); query != "" {
		fmt.Fprintln(out, conv.Send(bg, query))
		return nil
	}

	scanner := bufio.NewScanner(ctx.Stdin())
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "sair" || line == "exit":
			return nil
		case line != "":
			fmt.Fprintf(out, "%s\n\n", conv.Send(bg, line))
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}
