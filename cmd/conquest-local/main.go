package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	conquest "github.com/bcspragu/Conquest"
	"github.com/bcspragu/Conquest/ai"
	"github.com/bcspragu/Conquest/cardgen"
	"github.com/bcspragu/Conquest/cryptorand"
	"github.com/bcspragu/Conquest/game"
	"github.com/bcspragu/Conquest/term"
)

func main() {
	var (
		seed    = flag.Int64("seed", 0, "Seed for dealing cards, a random deal is used if zero")
		side    = flag.String("side", "home", "Side to play as, 'home' or 'away'")
		starter = flag.String("starter", "", "Side that moves first, 'home' or 'away'. Picked at random if blank")
		watch   = flag.Bool("watch", false, "Let the computer play both sides")
	)
	flag.Parse()

	var humanSide conquest.Side
	if err := humanSide.UnmarshalText([]byte(*side)); err != nil || humanSide == conquest.NoSide {
		log.Fatalf("invalid side %q, 'home' and 'away' are the only valid sides", *side)
	}

	r := cryptorand.New()
	if *seed != 0 {
		r = rand.New(rand.NewSource(*seed))
	}

	first := cardgen.Starter(r)
	if *starter != "" {
		if err := first.UnmarshalText([]byte(*starter)); err != nil || first == conquest.NoSide {
			log.Fatalf("invalid starter %q, 'home' and 'away' are the only valid sides", *starter)
		}
	}

	cfg := &game.Config{Home: ai.Greedy{}, Away: ai.Greedy{}}
	if !*watch {
		human := &term.Human{In: os.Stdin, Out: os.Stdout}
		if humanSide == conquest.Home {
			cfg.Home = human
		} else {
			cfg.Away = human
		}
	}

	g := game.New(cardgen.NewState(first, r))
	out, err := g.Play(cfg)
	if err != nil {
		log.Fatalf("failed to play game: %v", err)
	}

	term.PrintBoard(os.Stdout, g.State().Board)
	term.PrintScore(os.Stdout, g.State().Board)
	switch out.Winner {
	case conquest.NoSide:
		fmt.Println("It's a draw!")
	default:
		fmt.Printf("%s wins!\n", out.Winner)
	}
}
