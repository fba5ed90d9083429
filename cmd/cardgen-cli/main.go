package main

import (
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"

	"github.com/bcspragu/Conquest/cardgen"
	"github.com/bcspragu/Conquest/cryptorand"
	"github.com/bcspragu/Conquest/term"
)

func main() {
	var (
		n      = flag.Int("n", 5, "Number of cards to deal")
		seed   = flag.Int64("seed", 0, "Seed for dealing cards, a random deal is used if zero")
		asJSON = flag.Bool("json", false, "Print the cards as JSON instead of a table")
	)
	flag.Parse()

	if *n < 0 {
		log.Fatalf("can't deal %d cards", *n)
	}

	r := cryptorand.New()
	if *seed != 0 {
		r = rand.New(rand.NewSource(*seed))
	}

	hand := cardgen.NewHand(r, *n)
	if !*asJSON {
		term.PrintHand(os.Stdout, hand)
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(hand); err != nil {
		log.Fatalf("failed to encode cards: %v", err)
	}
}
