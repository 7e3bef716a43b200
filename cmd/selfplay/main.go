// Command selfplay runs two bot-driven replicas against each other in one process and renders
// every turn in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pterm/pterm"

	"github.com/rocketscienceinc/knucklebones-backend/internal/board"
	"github.com/rocketscienceinc/knucklebones-backend/internal/dice"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
	"github.com/rocketscienceinc/knucklebones-backend/internal/referee"
	"github.com/rocketscienceinc/knucklebones-backend/internal/replica"
)

func main() {
	seedFlag := flag.Uint64("seed", 0, "shared dice seed, random when 0")
	displacementFlag := flag.String("displacement", string(board.DisplaceAll), "displacement rule: all or one")
	delayFlag := flag.Duration("delay", 300*time.Millisecond, "pause between turns")
	quietFlag := flag.Bool("quiet", false, "only print the outcome")
	flag.Parse()

	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))

	displacement, err := board.ParseDisplacement(*displacementFlag)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(2)
	}

	seed := *seedFlag
	if seed == 0 {
		if seed, err = dice.NewSeed(); err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
	}

	rules := replica.DefaultRules()
	rules.Displacement = displacement

	game, err := newMatch(seed, rules)
	if err != nil {
		logger.Error("could not set up match", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	for !game.finished() {
		mover, err := game.turn(ctx)
		if err != nil {
			logger.Error("turn failed", "error", err)
			os.Exit(1)
		}

		if !*quietFlag {
			printState(game, mover)
			time.Sleep(*delayFlag)
		}
	}

	ref := referee.New(slog.New(slog.DiscardHandler), rules, game.server.Public())
	verdict, err := ref.Verify(ctx, game.setup, game.players[0].signer.Public(), game.players[1].signer.Public(), game.log)
	if err != nil {
		logger.Error("referee rejected the game", "error", err)
		os.Exit(1)
	}

	printOutcome(game, verdict.Outcome)
}

func printState(game *match, mover *player) {
	last := game.log[len(game.log)-1]

	panels := make([]pterm.Panel, 0, len(game.players))
	for _, p := range game.players {
		panels = append(panels, pterm.Panel{Data: renderPlayer(p)})
	}

	action := pterm.DefaultBox.WithHorizontalPadding(4).
		WithTitle(pterm.LightYellow("|LAST MOVE|")).WithTitleTopCenter().
		Sprintf("#%d %s played column %d", last.Sequence, pterm.LightCyan(mover.name), last.Column)

	_ = pterm.DefaultPanel.WithPanels([][]pterm.Panel{
		panels,
		{{Data: action}},
	}).Render()
}

func renderPlayer(p *player) string {
	snapshot := p.replica.Snapshot()

	rows := make([]string, 0, len(snapshot.SelfGrid)+2)
	for row := len(snapshot.SelfGrid) - 1; row >= 0; row-- {
		line := ""
		for _, cell := range snapshot.SelfGrid[row] {
			if cell == board.EmptyCell {
				line += pterm.Gray(" . ")
				continue
			}
			line += pterm.LightWhite(fmt.Sprintf(" %d ", cell))
		}
		rows = append(rows, line)
	}

	scores := ""
	for _, score := range snapshot.SelfScore {
		scores += fmt.Sprintf("%3d", score)
	}
	rows = append(rows, pterm.LightGreen(scores), "next die: "+pterm.LightYellow(snapshot.NextDiceValue))

	title := pterm.LightCyan("|" + p.name + "|")
	if snapshot.YourTurn && !snapshot.Outcome.Finished {
		title = pterm.LightGreen("|" + p.name + " to play|")
	}

	body := ""
	for i, row := range rows {
		if i > 0 {
			body += "\n"
		}
		body += row
	}

	return pterm.DefaultBox.WithHorizontalPadding(2).WithTitle(title).WithTitleTopCenter().Sprint(body)
}

func printOutcome(game *match, outcome entity.Outcome) {
	starting := game.players[0]
	second := game.players[1]

	var text string
	switch {
	case outcome.IsTie():
		text = pterm.Sprintfln("Tie at %d", outcome.SelfTotal)
	case outcome.Winner == entity.WinnerSelf:
		text = pterm.Sprintfln("%s won %d to %d", pterm.LightCyan(starting.name), outcome.SelfTotal, outcome.OpponentTotal)
	default:
		text = pterm.Sprintfln("%s won %d to %d", pterm.LightCyan(second.name), outcome.OpponentTotal, outcome.SelfTotal)
	}

	text += pterm.Sprintfln("seed %d, %d moves, verified by referee", game.setup.SharedSeed, len(game.log))

	pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1).
		WithTitle(pterm.LightGreen("|RESULT|")).WithTitleTopCenter().Println(text)
}
