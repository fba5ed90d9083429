package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	conquest "github.com/bcspragu/Conquest"
	"github.com/bcspragu/Conquest/client"
	"github.com/bcspragu/Conquest/term"
	"github.com/bcspragu/Conquest/web"
)

func main() {
	var (
		serverScheme = flag.String("server_scheme", "http", "The scheme of the server to connect to to play the game.")
		serverAddr   = flag.String("server_addr", "localhost:8080", "The address of the server to connect to to play the game.")
		gameToJoin   = flag.String("game_to_join", "", "The ID of the game to join, will create one if its blank")
		opponent     = flag.String("opponent", "", "Set to 'computer' to play against the server when creating a game")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("need to specify a username")
	}
	name := flag.Arg(0)

	c, err := client.New(*serverScheme, *serverAddr)
	if err != nil {
		log.Fatalf("failed to create client: %v", err)
	}

	uID, err := c.CreateUser(name)
	if err != nil {
		log.Fatal(err)
	}

	gID := conquest.GameID(*gameToJoin)
	if gID == "" {
		if gID, err = c.CreateGame(*opponent); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Created game %q\n", gID)
	}

	p := &player{
		c:      c,
		gID:    gID,
		uID:    uID,
		human:  &term.Human{In: os.Stdin, Out: os.Stdout},
		states: make(chan *conquest.GameState, conquest.Size+1),
		end:    make(chan *web.GameEnd, 1),
		seen:   -1,
	}

	connected := make(chan struct{})
	wsErr := make(chan error, 1)
	go func() {
		wsErr <- c.ListenForUpdates(gID, client.WSHooks{
			OnConnect: func() { close(connected) },
			OnStart:   func(gs *web.GameStart) { p.states <- gs.Game.State },
			OnCardPlaced: func(cp *web.CardPlaced) {
				fmt.Printf("%s placed %s in cell %d, flipping %v\n", cp.Side, cp.Card, cp.Placed, cp.Flipped)
				p.states <- cp.State
			},
			OnEnd: func(ge *web.GameEnd) { p.end <- ge },
		})
	}()

	select {
	case <-connected:
	case err := <-wsErr:
		log.Fatalf("failed to listen for updates: %v", err)
	}

	if *gameToJoin != "" {
		if err := c.JoinGame(gID); err != nil {
			log.Fatal(err)
		}
	}

	// Updates from before we connected never reach us, so start from whatever
	// the server has now.
	g, err := c.Game(gID)
	if err != nil {
		log.Fatal(err)
	}
	if g.Status == conquest.Pending {
		fmt.Println("Waiting for an opponent to join...")
	} else {
		p.states <- g.State
	}

	if err := p.play(wsErr); err != nil {
		log.Fatal(err)
	}
}

type player struct {
	c     *client.Client
	gID   conquest.GameID
	uID   conquest.UserID
	human *term.Human

	states chan *conquest.GameState
	end    chan *web.GameEnd

	// seen is how many cards were on the board the last time we looked, so
	// duplicate updates don't prompt twice.
	seen int
}

func (p *player) play(wsErr <-chan error) error {
	for {
		select {
		case gs := <-p.states:
			if err := p.update(gs); err != nil {
				return err
			}
		case ge := <-p.end:
			switch ge.Winner {
			case conquest.NoSide:
				fmt.Printf("It's a draw, %d to %d\n", ge.Home, ge.Away)
			default:
				fmt.Printf("%s wins, %d to %d\n", ge.Winner, ge.Home, ge.Away)
			}
			return nil
		case err := <-wsErr:
			if err == nil {
				return errors.New("server closed the connection")
			}
			return err
		}
	}
}

func (p *player) update(gs *conquest.GameState) error {
	filled := conquest.Size - len(gs.Board.Empty())
	if filled <= p.seen {
		return nil
	}
	p.seen = filled

	side := gs.SideOf(p.uID)
	if side == conquest.NoSide {
		return fmt.Errorf("user %q isn't playing in game %q", p.uID, p.gID)
	}
	if gs.Board.Full() {
		term.PrintBoard(os.Stdout, gs.Board)
		return nil
	}
	if gs.ActiveSide != side {
		term.PrintBoard(os.Stdout, gs.Board)
		fmt.Printf("Waiting for %s to move...\n", side.Other())
		return nil
	}

	for {
		pl, err := p.human.Move(gs, side)
		if err != nil {
			return err
		}
		if _, err := p.c.Move(p.gID, pl); err != nil {
			fmt.Println(err)
			continue
		}
		return nil
	}
}
