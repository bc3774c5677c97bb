package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/charbxl/nine999/nine999-backend/client"
	"github.com/charbxl/nine999/nine999-backend/game"
	"github.com/charbxl/nine999/nine999-backend/models"
)

func main() {
	addr := flag.String("addr", "ws://localhost:8000/ws", "server websocket URL")
	secret := flag.String("secret", "", "your 4-digit secret")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	lines := make(chan string)
	go readLines(lines)

	chosen := *secret
	for !game.IsValidCode(chosen) {
		fmt.Print("Your secret (4 digits): ")
		var ok bool
		if chosen, ok = <-lines; !ok {
			return
		}
	}

	sess, err := client.Dial(*addr)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect")
	}
	defer sess.Close()

	if err := sess.Join("", chosen); err != nil {
		log.Fatal().Err(err).Msg("failed to join")
	}
	fmt.Println("Waiting for opponent...")

	st := client.NewState()
	for {
		select {
		case env, ok := <-sess.Inbound():
			if !ok {
				fmt.Println("Connection closed.")
				return
			}
			notice, err := st.Apply(env)
			if err != nil {
				log.Warn().Err(err).Msg("ignoring event")
				continue
			}
			if notice != "" {
				fmt.Println("!", notice)
				continue
			}
			render(st, env.Event)
			if st.Done() {
				return
			}
		case guess, ok := <-lines:
			if !ok {
				return
			}
			if err := st.CanGuess(guess); err != nil {
				fmt.Println("!", err)
				continue
			}
			if err := sess.SubmitGuess(st.GameID, st.UserID, guess); err != nil {
				fmt.Println("! connection lost:", err)
				return
			}
		}
	}
}

func render(st *client.State, event string) {
	switch event {
	case models.EventGameStart:
		fmt.Println("Opponent found. Game on.")
		prompt(st)
	case models.EventAttemptResult:
		last := st.Guesses[len(st.Guesses)-1]
		if last.UserID == st.UserID {
			fmt.Printf("You guessed %s: %d/4 matched\n", last.Guess, last.Match)
		} else {
			fmt.Printf("Opponent guessed: %d/4 matched\n", last.Match)
		}
		prompt(st)
	case models.EventGameOver:
		switch {
		case st.OpponentDisconnected():
			fmt.Println("The other player disconnected.")
		case st.DidWin():
			fmt.Println("You guessed right!")
		default:
			fmt.Println("Your opponent guessed your number.")
		}
		if !st.OpponentDisconnected() {
			fmt.Println()
			fmt.Println(client.GenerateShareText(st.Guesses, st.UserID, st.DidWin()))
		}
	}
}

func prompt(st *client.State) {
	if st.MyTurn() {
		fmt.Print("Your turn, enter a guess: ")
	} else {
		fmt.Println("Opponent's turn...")
	}
}

func readLines(out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		out <- scanner.Text()
	}
}
